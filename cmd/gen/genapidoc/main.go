package genapidoc

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"github.com/yusufsyaifudin/lamaran/transport/restapi/apidoc"
	"gopkg.in/yaml.v3"
)

const (
	FileJSON = "openapi.json"
	FileYAML = "openapi.yaml"
)

type ApiDocCfg struct {
	AppName    string `validate:"required"`
	AppVersion string `validate:"required"`
}

type ApiDoc struct {
	Config    ApiDocCfg
	flags     *flag.FlagSet
	outDir    string
	serverURL string
}

var _ cli.Command = (*ApiDoc)(nil)

func NewApiDocCmd(cfg ApiDocCfg) (*ApiDoc, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("genapidocs: validation error: %w", err)
		return nil, err
	}

	cmd := &ApiDoc{Config: cfg}
	cmd.flags = flag.NewFlagSet("apidoc", flag.ContinueOnError)
	cmd.flags.StringVar(&cmd.outDir, "o", "docs", "Output directory of openapi.json and openapi.yaml")
	cmd.flags.StringVar(&cmd.serverURL, "server", "http://localhost:3000", "Server URL listed in the document")
	return cmd, nil
}

func (a *ApiDoc) Help() string {
	return strings.TrimSpace(`
Usage: lamaran apidoc [-o dir] [-server url]

  Generate the OpenAPI 3 document of the HTTP API as openapi.json and openapi.yaml.
  The same document is served on GET /openapi.json.
`)
}

func (a *ApiDoc) Synopsis() string {
	return "generate openapi document of the HTTP API"
}

// Run .
// all error responses follow respbuilder.RespStructure{}
func (a *ApiDoc) Run(args []string) int {
	err := a.flags.Parse(args)
	if err != nil {
		log.Println(err)
		return 1
	}

	jsonDoc, yamlDoc, err := Render(a.Config.AppName, a.Config.AppVersion, a.serverURL)
	if err != nil {
		log.Println(err)
		return 1
	}

	err = WriteFile(jsonDoc, filepath.Join(a.outDir, FileJSON))
	if err != nil {
		log.Println(err)
		return 1
	}

	err = WriteFile(yamlDoc, filepath.Join(a.outDir, FileYAML))
	if err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

// Render returns the document as indented JSON and as YAML.
func Render(title, version string, serverURLs ...string) (jsonDoc, yamlDoc []byte, err error) {
	doc := apidoc.New(title, version, serverURLs...)

	j, err := doc.MarshalJSON()
	if err != nil {
		err = fmt.Errorf("cannot marshal openapi3 doc: %w", err)
		return
	}

	var i interface{}
	err = json.Unmarshal(j, &i)
	if err != nil {
		err = fmt.Errorf("cannot unmarshal openapi3 doc: %w", err)
		return
	}

	jsonDoc, err = json.MarshalIndent(i, "", "  ")
	if err != nil {
		err = fmt.Errorf("cannot indent openapi3 doc: %w", err)
		return
	}

	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	err = enc.Encode(i)
	if err != nil {
		err = fmt.Errorf("cannot marshal YAML openapi3 doc: %w", err)
		return
	}

	if err = enc.Close(); err != nil {
		err = fmt.Errorf("cannot flush YAML openapi3 doc: %w", err)
		return
	}

	yamlDoc = buf.Bytes()
	return
}

// WriteFile creates the parent directory and overwrites fileName.
func WriteFile(content []byte, fileName string) (err error) {
	dir := filepath.Dir(fileName)
	err = os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		err = fmt.Errorf("cannot create directory %s: %w", dir, err)
		return
	}

	err = os.WriteFile(fileName, content, 0o644)
	if err != nil {
		err = fmt.Errorf("cannot write file %s: %w", fileName, err)
		return
	}

	return
}
