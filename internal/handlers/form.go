package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"idcards/internal/model"
	"idcards/internal/service"
)

const (
	fieldFullName    = "fullName"
	fieldDesignation = "designation"
	fieldDepartment  = "department"
	fieldIDNumber    = "idNumber"
	fieldIssueDate   = "issueDate"
	fieldExpiryDate  = "expiryDate"
	fieldPhoto       = "photo"

	multipartMemory = 8 << 20
)

// cardForm — поля удостоверения из multipart, urlencoded или JSON тела.
// Присутствие ключа отличается от пустого значения.
type cardForm struct {
	values map[string]string
	photo  *multipart.FileHeader
}

func readCardForm(r *http.Request) (*cardForm, error) {
	form := &cardForm{values: map[string]string{}}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, formErr(err)
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				form.values[k] = v[0]
			}
		}
		if fhs := r.MultipartForm.File[fieldPhoto]; len(fhs) > 0 {
			form.photo = fhs[0]
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, formErr(err)
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				form.values[k] = v[0]
			}
		}
	case "application/json":
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, formErr(err)
		}
		for k, v := range raw {
			switch t := v.(type) {
			case nil:
				form.values[k] = ""
			case string:
				form.values[k] = t
			case float64:
				form.values[k] = strconv.FormatFloat(t, 'f', -1, 64)
			default:
				form.values[k] = fmt.Sprint(t)
			}
		}
	case "":
		// пустое тело: обновление без полей допустимо
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", service.ErrBadInput, ct)
	}
	return form, nil
}

func formErr(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return fmt.Errorf("%w: %v", service.ErrBadInput, err)
}

func (f *cardForm) str(key string) *string {
	if v, ok := f.values[key]; ok {
		return &v
	}
	return nil
}

// date разбирает дату; пустое значение — nil.
func (f *cardForm) date(key string) (*time.Time, bool, error) {
	v, ok := f.values[key]
	if !ok || v == "" {
		return nil, ok, nil
	}
	t, err := model.ParseDate(v)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", service.ErrBadInput, key, err)
	}
	return &t, true, nil
}

// openPhoto открывает загруженный файл фотографии; close обязателен при upload != nil.
func (f *cardForm) openPhoto() (*service.Upload, func(), error) {
	if f.photo == nil {
		return nil, func() {}, nil
	}
	file, err := f.photo.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open photo: %w", err)
	}
	return &service.Upload{Name: f.photo.Filename, Body: file}, func() { _ = file.Close() }, nil
}

func (f *cardForm) input() (service.CardInput, error) {
	in := service.CardInput{
		FullName:    f.values[fieldFullName],
		Designation: f.values[fieldDesignation],
		Department:  f.values[fieldDepartment],
		IDNumber:    f.values[fieldIDNumber],
	}
	var err error
	if in.IssueDate, _, err = f.date(fieldIssueDate); err != nil {
		return in, err
	}
	if in.ExpiryDate, _, err = f.date(fieldExpiryDate); err != nil {
		return in, err
	}
	return in, nil
}

func (f *cardForm) patch() (service.CardPatch, error) {
	p := service.CardPatch{
		FullName:    f.str(fieldFullName),
		Designation: f.str(fieldDesignation),
		Department:  f.str(fieldDepartment),
		IDNumber:    f.str(fieldIDNumber),
	}
	issue, ok, err := f.date(fieldIssueDate)
	if err != nil {
		return p, err
	}
	if ok {
		p.IssueDate = &service.OptionalDate{Time: issue}
	}
	expiry, ok, err := f.date(fieldExpiryDate)
	if err != nil {
		return p, err
	}
	if ok {
		p.ExpiryDate = &service.OptionalDate{Time: expiry}
	}
	return p, nil
}
