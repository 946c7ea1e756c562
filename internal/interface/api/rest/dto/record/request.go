package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"usercrud/internal/domain/record"
)

const (
	MsgReadOnly = "This field is read-only."
	MsgNotNull  = "This field may not be null."
	MsgInvalid  = "Not a valid string."
)

var ErrMalformedBody = errors.New("malformed JSON body")

// readOnly fields are server managed and rejected when a client sends them.
var readOnly = []string{"is_deleted", "deleted_at", "created_at", "updated_at"}

type Request struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=150"`
	FatherName  *string `json:"father_name" validate:"omitnil,min=1,max=150"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitnil,datetime=2006-01-02"`
	Email       *string `json:"email" validate:"omitnil,max=254,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitnil,min=1,max=20,phone"`
}

// ParseRequest decodes a create or update body. Field level problems come back
// as *record.ValidationError, anything unparseable as ErrMalformedBody.
func ParseRequest(body []byte) (Request, error) {
	var req Request

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return req, ErrMalformedBody
	}

	fields := make(map[string]string)
	for _, k := range readOnly {
		if _, ok := raw[k]; ok {
			fields[k] = MsgReadOnly
		}
	}

	for key, dst := range map[string]**string{
		record.FieldName:        &req.Name,
		record.FieldFatherName:  &req.FatherName,
		record.FieldDateOfBirth: &req.DateOfBirth,
		record.FieldEmail:       &req.Email,
		record.FieldPhoneNumber: &req.PhoneNumber,
	} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			fields[key] = MsgNotNull
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			fields[key] = MsgInvalid
			continue
		}
		*dst = &s
	}

	if len(fields) > 0 {
		return req, &record.ValidationError{Fields: fields}
	}

	req.normalize()

	return req, nil
}

func (r *Request) normalize() {
	for _, p := range []*string{r.Name, r.FatherName} {
		if p != nil {
			*p = norm.NFC.String(strings.TrimSpace(*p))
		}
	}
	for _, p := range []*string{r.DateOfBirth, r.Email, r.PhoneNumber} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
