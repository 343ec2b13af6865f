package handlerapplication

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"

	"github.com/gorilla/schema"
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
	"github.com/yusufsyaifudin/lamaran/pkg/respbuilder"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
	"github.com/yusufsyaifudin/lamaran/transport/restapi/httptyped"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

const (
	FormFileCV = "cvFile"

	HeaderApplicationID = applicationsvc.HeaderApplicationID
)

type HandlerConfig struct {
	ApplicationService applicationsvc.Service `validate:"required"`
	MaxUploadBytes     int64                  `validate:"required,min=1"`
	DefaultCVPath      string                 `validate:"required"`
	DefaultCVFilename  string                 `validate:"required"`

	// DebugError returns the send diagnostic in the response.
	DebugError bool
}

type Handler struct {
	Config  HandlerConfig
	decoder *schema.Decoder
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &Handler{Config: conf, decoder: dec}, nil
}

// Submit send one application email.
// Path         : POST /api/v1/applications
// Request Body : multipart/form-data or application/x-www-form-urlencoded, applicationsvc.Submission keys and optional cvFile
// Response     : httptyped.SendResult
func (h *Handler) Submit() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlerapplication.Submit")
		defer span.End()

		if r.Body == nil {
			err := fmt.Errorf("request body is nil")
			h.writeError(w, r, respbuilder.ErrMalformedForm, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes)
		defer func() {
			if _err := r.Body.Close(); _err != nil {
				ylog.Error(ctx, "cannot close request body", ylog.KV("error", _err))
			}
		}()

		err := h.parseForm(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.writeError(w, r, respbuilder.ErrPayloadTooLarge, err)
				return
			}

			h.writeError(w, r, respbuilder.ErrMalformedForm, err)
			return
		}

		var submission applicationsvc.Submission
		err = h.decoder.Decode(&submission, r.PostForm)
		if err != nil {
			err = fmt.Errorf("failed decode form: %w", err)
			h.writeError(w, r, respbuilder.ErrMalformedForm, err)
			return
		}

		cv, err := formFile(r, FormFileCV)
		if err != nil {
			h.writeError(w, r, respbuilder.ErrMalformedForm, err)
			return
		}

		out, err := h.Config.ApplicationService.Submit(ctx, applicationsvc.InputSubmit{
			Submission: submission,
			CV:         cv,
		})

		var fields validator.FieldErrors
		if errors.As(err, &fields) {
			respbuilder.WriteJSON(http.StatusUnprocessableEntity, w, r, httptyped.SendResult{
				Success: false,
				Message: applicationsvc.MsgInvalidForm,
				Fields:  fields,
			})
			return
		}

		if err != nil {
			h.writeError(w, r, respbuilder.ErrUnhandled, err)
			return
		}

		result := httptyped.SendResult{
			Success:       out.Success,
			Message:       out.Message,
			ApplicationID: out.ID,
		}

		if h.Config.DebugError {
			result.Error = out.Error
		}

		if out.ID != "" {
			w.Header().Set(HeaderApplicationID, out.ID)
		}

		status := http.StatusOK
		if !out.Success {
			status = http.StatusBadGateway
		}

		respbuilder.WriteJSON(status, w, r, result)
	}

	return handler
}

// Defaults return the initial form values.
// Path         : GET /api/v1/applications/defaults
// Response     : httptyped.ApplicationForm
func (h *Handler) Defaults() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		out := h.Config.ApplicationService.Defaults(r.Context())
		resp := respbuilder.Success(r.Context(), httptyped.ApplicationFormFromSvc(out.Submission))
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

// Resume serve the default CV.
// Path         : GET /resume.pdf
func (h *Handler) Resume() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		f, err := os.Open(h.Config.DefaultCVPath)
		if err != nil {
			ylog.Error(r.Context(), "default cv not available", ylog.KV("error", err))
			h.writeError(w, r, respbuilder.ErrResourceNotFound, fmt.Errorf("resume not found"))
			return
		}

		defer func() {
			if _err := f.Close(); _err != nil {
				ylog.Error(r.Context(), "cannot close default cv", ylog.KV("error", _err))
			}
		}()

		stat, err := f.Stat()
		if err != nil {
			h.writeError(w, r, respbuilder.ErrUnhandled, err)
			return
		}

		w.Header().Set("Content-Type", applicationsvc.ContentTypePDF)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
			"filename": h.Config.DefaultCVFilename,
		}))
		http.ServeContent(w, r, h.Config.DefaultCVFilename, stat.ModTime(), f)
	}

	return handler
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, kind respbuilder.ErrKind, err error) {
	ylog.Error(r.Context(), "application request failed", ylog.KV("error", err))
	respbuilder.WriteError(w, r, kind, err, h.Config.DebugError)
}

func (h *Handler) parseForm(r *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("invalid content type: %w", err)
	}

	switch mediaType {
	case "multipart/form-data":
		err = r.ParseMultipartForm(h.Config.MaxUploadBytes)
	case "application/x-www-form-urlencoded":
		err = r.ParseForm()
	default:
		err = fmt.Errorf("unsupported content type %s", mediaType)
	}

	if err != nil {
		return fmt.Errorf("failed parse form: %w", err)
	}

	return nil
}

// formFile returns nil when the form has no such file.
func formFile(r *http.Request, key string) (*applicationsvc.Attachment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed read form file %s: %w", key, err)
	}

	defer func() {
		_ = file.Close()
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed read form file %s: %w", key, err)
	}

	if len(content) == 0 {
		return nil, nil
	}

	return &applicationsvc.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
