// Package apidoc describes the HTTP API as an OpenAPI 3 document.
package apidoc

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
	"github.com/yusufsyaifudin/lamaran/transport/restapi/handlerapplication"
)

const (
	PathApplications         = "/api/v1/applications"
	PathApplicationsDefaults = "/api/v1/applications/defaults"
	PathResume               = "/resume.pdf"
	PathOpenAPI              = "/openapi.json"
)

// New returns the OpenAPI document of the service.
func New(title, version string, serverURLs ...string) *openapi3.T {
	servers := openapi3.Servers{}
	for _, u := range serverURLs {
		servers = append(servers, &openapi3.Server{URL: u})
	}

	components := openapi3.Components{
		Schemas: openapi3.Schemas{
			"ApplicationForm": openapi3.NewSchemaRef("", submissionSchema(false)),
			"SendResult":      openapi3.NewSchemaRef("", sendResultSchema()),
			"ErrorResponse":   openapi3.NewSchemaRef("", errorSchema()),
		},
	}

	paths := openapi3.Paths{
		PathApplications:         &openapi3.PathItem{Post: submitOperation()},
		PathApplicationsDefaults: &openapi3.PathItem{Get: defaultsOperation()},
		PathResume:               &openapi3.PathItem{Get: resumeOperation()},
	}

	return &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       title,
			Version:     version,
			Description: "Send a job application email with the applicant CV attached.",
		},
		Servers:    servers,
		Components: components,
		Paths:      paths,
	}
}

// submissionSchema uses the schema, validate and msg tags of applicationsvc.Submission.
func submissionSchema(withFile bool) *openapi3.Schema {
	s := openapi3.NewObjectSchema()

	typ := reflect.TypeOf(applicationsvc.Submission{})
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Tag.Get("schema")
		if name == "" {
			continue
		}

		prop := described(openapi3.NewStringSchema(), field.Tag.Get("msg"))
		switch rule := field.Tag.Get("validate"); {
		case rule == "email":
			prop = prop.WithFormat("email")
			s.Required = append(s.Required, name)
		case rule == "omitempty,email":
			prop = prop.WithFormat("email")
		default:
			if min, ok := minLength(rule); ok {
				prop = prop.WithMinLength(min)
			}

			s.Required = append(s.Required, name)
		}

		s = s.WithProperty(name, prop)
	}

	if withFile {
		s = s.WithProperty(handlerapplication.FormFileCV,
			described(openapi3.NewStringSchema().WithFormat("binary"), "CV file, the default CV is attached when empty"))
	}

	return s
}

func described(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}

func minLength(rule string) (int64, bool) {
	for _, r := range strings.Split(rule, ",") {
		v, ok := strings.CutPrefix(r, "min=")
		if !ok {
			continue
		}

		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return n, true
		}
	}

	return 0, false
}

func sendResultSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("error", described(openapi3.NewStringSchema(), "send diagnostic of a failed send")).
		WithProperty("fields", described(openapi3.NewObjectSchema(), "form key to message, only on validation failure")).
		WithProperty("applicationId", openapi3.NewStringSchema())
}

func errorSchema() *openapi3.Schema {
	entity := openapi3.NewObjectSchema().
		WithProperty("error_code", openapi3.NewStringSchema()).
		WithProperty("error_description", openapi3.NewStringSchema()).
		WithProperty("debug", openapi3.NewStringSchema()).
		WithProperty("trace_id", openapi3.NewStringSchema())

	return openapi3.NewObjectSchema().WithProperty("error", entity)
}

func jsonRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func submitOperation() *openapi3.Operation {
	formSchema := openapi3.NewSchemaRef("", submissionSchema(true))

	op := openapi3.NewOperation()
	op.Tags = []string{"Application"}
	op.OperationID = "ApplicationSubmit"
	op.Summary = "Send Application Email"
	op.Description = "Validates the form, renders the cover letter and sends it with the CV attached. Nothing is retried."
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"multipart/form-data":               openapi3.NewMediaType().WithSchemaRef(formSchema),
				"application/x-www-form-urlencoded": openapi3.NewMediaType().WithSchema(submissionSchema(false)),
			},
		},
	}

	op.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("email sent").
		WithJSONSchemaRef(jsonRef("SendResult")))
	op.AddResponse(http.StatusUnprocessableEntity, openapi3.NewResponse().
		WithDescription("invalid form, see fields").
		WithJSONSchemaRef(jsonRef("SendResult")))
	op.AddResponse(http.StatusBadGateway, openapi3.NewResponse().
		WithDescription("the relay did not accept the email").
		WithJSONSchemaRef(jsonRef("SendResult")))
	op.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
		WithDescription("malformed form").
		WithJSONSchemaRef(jsonRef("ErrorResponse")))
	op.AddResponse(http.StatusRequestEntityTooLarge, openapi3.NewResponse().
		WithDescription("upload too large").
		WithJSONSchemaRef(jsonRef("ErrorResponse")))

	return op
}

func defaultsOperation() *openapi3.Operation {
	envelope := openapi3.NewObjectSchema().
		WithProperty("trace_id", openapi3.NewStringSchema())
	envelope.Properties["data"] = jsonRef("ApplicationForm")

	op := openapi3.NewOperation()
	op.Tags = []string{"Application"}
	op.OperationID = "ApplicationDefaults"
	op.Summary = "Form Default Values"
	op.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("initial form values").
		WithJSONSchema(envelope))

	return op
}

func resumeOperation() *openapi3.Operation {
	resp := openapi3.NewResponse().WithDescription("the default CV")
	resp.Content = openapi3.Content{
		applicationsvc.ContentTypePDF: openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema().WithFormat("binary")),
	}

	op := openapi3.NewOperation()
	op.Tags = []string{"Resume"}
	op.OperationID = "Resume"
	op.Summary = "Default CV"
	op.AddResponse(http.StatusOK, resp)
	op.AddResponse(http.StatusNotFound, openapi3.NewResponse().
		WithDescription("no default CV").
		WithJSONSchemaRef(jsonRef("ErrorResponse")))

	return op
}
