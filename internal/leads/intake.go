package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// FilesField is the multipart field carrying sample documents.
const FilesField = "samples"

// Limits bounds what a single submission may carry.
type Limits struct {
	MaxFiles      int
	MaxFileBytes  int64
	MaxFieldBytes int64
}

// DefaultLimits allows five files of up to 10MB each.
func DefaultLimits() Limits {
	return Limits{MaxFiles: 5, MaxFileBytes: 10 << 20, MaxFieldBytes: 64 << 10}
}

// MaxBodyBytes is the largest request body the limits can produce.
func (l Limits) MaxBodyBytes() int64 {
	return int64(l.MaxFiles)*l.MaxFileBytes + 1<<20
}

// ParseSubmission decodes a multipart, urlencoded or JSON submission.
// Attachment limits are enforced while streaming, so oversized uploads are
// rejected before any Lead exists.
func ParseSubmission(r *http.Request, limits Limits) (*Submission, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r, limits)
	case "application/json":
		return parseJSON(r, limits)
	default:
		if err := r.ParseForm(); err != nil {
			return nil, classifyReadError(err)
		}
		return fromValues(r.PostForm, nil), nil
	}
}

func parseMultipart(r *http.Request, limits Limits) (*Submission, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	form := url.Values{}
	var attachments []Attachment
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classifyReadError(err)
		}

		name := part.FormName()
		if filename := part.FileName(); filename != "" {
			if name != FilesField {
				_, _ = io.Copy(io.Discard, part)
				part.Close()
				continue
			}
			if len(attachments) >= limits.MaxFiles {
				part.Close()
				return nil, fmt.Errorf("%w: at most %d allowed", ErrTooManyFiles, limits.MaxFiles)
			}
			data, err := io.ReadAll(io.LimitReader(part, limits.MaxFileBytes+1))
			part.Close()
			if err != nil {
				return nil, classifyReadError(err)
			}
			if int64(len(data)) > limits.MaxFileBytes {
				return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, filename, limits.MaxFileBytes)
			}
			contentType := part.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			attachments = append(attachments, Attachment{Filename: filename, ContentType: contentType, Content: data})
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, limits.MaxFieldBytes+1))
		part.Close()
		if err != nil {
			return nil, classifyReadError(err)
		}
		if int64(len(value)) > limits.MaxFieldBytes {
			return nil, fmt.Errorf("%w: field %s too long", ErrMalformedBody, name)
		}
		form.Add(name, string(value))
	}
	return fromValues(form, attachments), nil
}

type jsonSubmission struct {
	Name     string          `json:"name"`
	Company  string          `json:"company"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Message  string          `json:"message"`
	Website  string          `json:"website"`
	DocTypes json.RawMessage `json:"doc_types"`
}

func parseJSON(r *http.Request, limits Limits) (*Submission, error) {
	var req jsonSubmission
	body := io.LimitReader(r.Body, limits.MaxFieldBytes*8)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	docTypes, err := decodeStringOrList(req.DocTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: doc_types: %v", ErrMalformedBody, err)
	}
	return &Submission{
		Name:     req.Name,
		Company:  req.Company,
		Email:    req.Email,
		Phone:    req.Phone,
		Message:  req.Message,
		Website:  req.Website,
		DocTypes: docTypes,
	}, nil
}

// decodeStringOrList accepts either "a" or ["a","b"].
func decodeStringOrList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, errors.New("expected string or array of strings")
	}
	return []string{single}, nil
}

func fromValues(form url.Values, attachments []Attachment) *Submission {
	docTypes := append([]string{}, form["doc_types"]...)
	docTypes = append(docTypes, form["doc_types[]"]...)
	return &Submission{
		Name:        form.Get("name"),
		Company:     form.Get("company"),
		Email:       form.Get("email"),
		Phone:       form.Get("phone"),
		Message:     form.Get("message"),
		Website:     form.Get("website"),
		DocTypes:    docTypes,
		Attachments: attachments,
	}
}

func classifyReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}
