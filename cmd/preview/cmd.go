package preview

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/lamaran/backend"
	"github.com/yusufsyaifudin/lamaran/container"
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"gopkg.in/yaml.v3"
)

const (
	ExitSuccess = 0
	ExitErr     = 1
)

// Cmd renders the application email of a submission file without sending it.
type Cmd struct {
	flags      *flag.FlagSet
	stdout     io.Writer
	stderr     io.Writer
	configFile string
	inputFile  string
	cvFile     string
	outFile    string
}

func NewCmd() func() (cli.Command, error) {
	return func() (cli.Command, error) {
		return newCmd(os.Stdout, os.Stderr), nil
	}
}

var _ cli.Command = (*Cmd)(nil)

func newCmd(stdout, stderr io.Writer) *Cmd {
	c := &Cmd{stdout: stdout, stderr: stderr}
	c.flags = flag.NewFlagSet("preview", flag.ContinueOnError)
	c.flags.SetOutput(stderr)
	c.flags.StringVar(&c.configFile, "c", container.DefaultConfigFile, "Config file to load")
	c.flags.StringVar(&c.inputFile, "f", "submission.yml", "YAML file with the application fields")
	c.flags.StringVar(&c.cvFile, "cv", "", "CV to attach instead of the default one")
	c.flags.StringVar(&c.outFile, "o", "", "Write the HTML body to this file instead of stdout")
	return c
}

func (c *Cmd) Help() string {
	return strings.TrimSpace(`
Usage: lamaran preview -f submission.yml [-c config.yml] [-cv file.pdf] [-o out.html]

  Validate a submission and render the application email body without sending it.
  The submission file uses the same keys as the form, e.g. applicantName, roleTitle.
`)
}

func (c *Cmd) Synopsis() string {
	return "Render the application email without sending it"
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		return ExitErr
	}

	err = c.run(context.Background())
	if err != nil {
		_, _ = fmt.Fprintln(c.stderr, err)
		return ExitErr
	}

	return ExitSuccess
}

func (c *Cmd) run(ctx context.Context) (err error) {
	cfg, err := container.LoadConfig(c.configFile)
	if err != nil {
		return fmt.Errorf("error load config: %w", err)
	}

	// nothing leaves the machine
	mux := backend.NewRelayMultiplexer()
	if err = mux.Register(backend.RelayNoop, backend.NoopFactory); err != nil {
		return err
	}

	cfg.Mail.Relay = backend.RelayNoop
	services, err := container.SetupServicesWith(ctx, cfg, mux)
	defer func() {
		if services == nil {
			return
		}

		if _err := services.Close(); _err != nil {
			log.Printf("error close services: %s", _err)
		}
	}()

	if err != nil {
		return err
	}

	input, err := c.readInput()
	if err != nil {
		return err
	}

	out, err := services.Application().Preview(ctx, input)

	var fields validator.FieldErrors
	if errors.As(err, &fields) {
		return fmt.Errorf("invalid submission:\n%s", formatFields(fields))
	}

	if err != nil {
		return fmt.Errorf("error compose email: %w", err)
	}

	_, _ = fmt.Fprintf(c.stderr, "ID: %s\nTo: %s\nReply-To: %s\nSubject: %s\n",
		out.ID, strings.Join(out.Email.To, ", "), out.Email.ReplyTo, out.Email.Subject)
	for _, a := range out.Email.Attachments {
		_, _ = fmt.Fprintf(c.stderr, "Attachment: %s (%s, %d bytes)\n", a.Filename, a.ContentType, len(a.Content))
	}

	if c.outFile == "" {
		_, err = io.WriteString(c.stdout, out.Email.HTML)
		return err
	}

	err = os.WriteFile(c.outFile, []byte(out.Email.HTML), 0o644)
	if err != nil {
		return fmt.Errorf("error write preview %s: %w", c.outFile, err)
	}

	return nil
}

func (c *Cmd) readInput() (input applicationsvc.InputSubmit, err error) {
	content, err := os.ReadFile(c.inputFile)
	if err != nil {
		err = fmt.Errorf("error read submission %s: %w", c.inputFile, err)
		return
	}

	err = yaml.Unmarshal(content, &input.Submission)
	if err != nil {
		err = fmt.Errorf("error decode submission %s: %w", c.inputFile, err)
		return
	}

	if c.cvFile == "" {
		return
	}

	cv, err := os.ReadFile(c.cvFile)
	if err != nil {
		err = fmt.Errorf("error read cv %s: %w", c.cvFile, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(c.cvFile))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input.CV = &applicationsvc.Attachment{
		Filename:    filepath.Base(c.cvFile),
		ContentType: contentType,
		Content:     cv,
	}

	return
}

func formatFields(fields validator.FieldErrors) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("  %s: %s", k, fields[k]))
	}

	return strings.Join(lines, "\n")
}
