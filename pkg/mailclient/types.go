package mailclient

const (
	ProtocolSMTP  = "smtp"  // plain connection upgraded with STARTTLS
	ProtocolSMTPS = "smtps" // implicit TLS
)

type EmailCredential struct {
	Protocol     string `json:"protocol" yaml:"protocol" validate:"required,oneof=smtp smtps"`
	ServerHost   string `json:"server_host" yaml:"serverHost" validate:"required"`
	ServerPort   int    `json:"server_port" yaml:"serverPort" validate:"required"`
	AuthIdentity string `json:"auth_identity" yaml:"authIdentity" validate:"-"` //  Authorization identity may be left blank to indicate that it is the same as the username.
	Username     string `json:"username" yaml:"username" validate:"required"`
	Password     string `json:"-" yaml:"password" validate:"required"`
}

// Email is a fully composed message ready to be handed to a relay.
type Email struct {
	// ID is the local part of the Message-ID header, left out when empty.
	ID string `validate:"-"`

	// Sender is the envelope sender (MAIL FROM), usually the relay account.
	Sender string `validate:"required,email"`

	// From is the header sender, it may differ from Sender and may contain a display name.
	From    string   `validate:"required"`
	ReplyTo string   `validate:"omitempty,email"`
	To      []string `validate:"required,min=1,dive,email"`
	Subject string   `validate:"required"`
	HTML    string   `validate:"required"`

	// Text is the plain text alternative, derived from HTML when empty.
	Text        string            `validate:"-"`
	Headers     map[string]string `validate:"-"`
	Attachments []Attachment      `validate:"dive"`
}

type Attachment struct {
	Filename    string `validate:"required"`
	ContentType string `validate:"-"`
	Content     []byte `validate:"required"`
}
