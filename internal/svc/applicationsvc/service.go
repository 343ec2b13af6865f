package applicationsvc

import (
	"context"

	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/pkg/mailclient"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
)

const (
	MsgSent        = "Email sent successfully!"
	MsgSendFailed  = "Failed to send email. Please try again."
	MsgInvalidForm = "Please correct the highlighted fields."
)

// Service is an interface of final business logic.
// Any input and output from/to this function should be SAFE for external party to consume,
// i.e: request or response from HTTP handler
type Service interface {
	// Submit validates one application, composes the email and hands it to the relay.
	// Invalid input returns validator.FieldErrors as err.
	// A failed send is not an error: it is reported with OutSubmit.Success false.
	Submit(ctx context.Context, input InputSubmit) (out OutSubmit, err error)

	// Preview composes the email without sending it.
	Preview(ctx context.Context, input InputSubmit) (out OutPreview, err error)

	// Defaults returns the initial values of the application form.
	Defaults(ctx context.Context) (out OutDefaults)
}

// Submission is the flat application record collected by the form.
// Lengths are counted in characters.
type Submission struct {
	ApplicantName      string `schema:"applicantName" yaml:"applicantName" validate:"min=2" msg:"Name must be at least 2 characters"`
	CurrentTitle       string `schema:"currentTitle" yaml:"currentTitle" validate:"min=2" msg:"Current title is required"`
	Email              string `schema:"email" yaml:"email" validate:"email" msg:"Please enter a valid email address"`
	Phone              string `schema:"phone" yaml:"phone" validate:"min=10" msg:"Please enter a valid phone number"`
	Location           string `schema:"location" yaml:"location" validate:"min=2" msg:"Location is required"`
	RoleTitle          string `schema:"roleTitle" yaml:"roleTitle" validate:"min=2" msg:"Role title is required"`
	CompanyName        string `schema:"companyName" yaml:"companyName" validate:"min=2" msg:"Company name is required"`
	CompanyEmail       string `schema:"companyEmail" yaml:"companyEmail" validate:"omitempty,email" msg:"Please enter a valid company email"`
	Date               string `schema:"date" yaml:"date" validate:"min=1" msg:"Date is required"`
	HRName             string `schema:"hrName" yaml:"hrName" validate:"min=2" msg:"HR contact name is required"`
	HRTitle            string `schema:"hrTitle" yaml:"hrTitle" validate:"min=2" msg:"HR contact title is required"`
	YearsExperience    string `schema:"yearsExperience" yaml:"yearsExperience" validate:"min=1" msg:"Years of experience is required"`
	Field              string `schema:"field" yaml:"field" validate:"min=2" msg:"Field of expertise is required"`
	MainParagraph      string `schema:"mainParagraph" yaml:"mainParagraph" validate:"min=50" msg:"Main paragraph must be at least 50 characters"`
	CompanyAttraction  string `schema:"companyAttraction" yaml:"companyAttraction" validate:"min=20" msg:"Please explain what attracts you to the company"`
	CompanyAchievement string `schema:"companyAchievement" yaml:"companyAchievement" validate:"min=20" msg:"Please mention a company achievement you admire"`
	PreviousRole       string `schema:"previousRole" yaml:"previousRole" validate:"min=2" msg:"Previous role is required"`
	PreviousCompany    string `schema:"previousCompany" yaml:"previousCompany" validate:"min=2" msg:"Previous company is required"`
	Achievement1       string `schema:"achievement1" yaml:"achievement1" validate:"min=20" msg:"Please describe your first achievement"`
	Achievement2       string `schema:"achievement2" yaml:"achievement2" validate:"min=20" msg:"Please describe your second achievement"`
}

// Validate returns every failing field keyed by its form key, or nil when the submission is valid.
func (s Submission) Validate() validator.FieldErrors {
	fields, err := validator.Fields(s)
	if err != nil {
		// Submission is always a struct, this only happens on a broken validation tag.
		return validator.FieldErrors{"_": err.Error()}
	}

	return fields
}

// Attachment is an uploaded file.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type InputSubmit struct {
	Submission Submission

	// CV is optional, the default CV is attached when nil or empty.
	CV *Attachment
}

type OutSubmit struct {
	ID      string
	Success bool
	Message string

	// Error is the diagnostic of a failed send.
	Error  string
	Report *backend.Report
}

type OutPreview struct {
	ID    string
	Email mailclient.Email
}

type OutDefaults struct {
	Submission Submission
}
