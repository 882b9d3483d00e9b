package agents

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLen      = 2
	maxNameLen      = 50
	minMobileDigits = 7
	maxMobileDigits = 15
	minPasswordLen  = 6

	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

var (
	countryCodeRe = regexp.MustCompile(`^\+[1-9]\d{1,3}$`)
	mobileRe      = regexp.MustCompile(`^\d+$`)
)

type validator struct {
	fields []FieldError
}

func (v *validator) fail(field, msg string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: msg})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) name(name string) {
	if name == "" {
		v.fail("name", "Name is required")
		return
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		v.fail("name", "Name must be between 2 and 50 characters")
	}
}

func (v *validator) email(email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.fail("email", "Valid email is required")
	}
}

func (v *validator) countryCode(code string) {
	if code == "" {
		v.fail("countryCode", "Country code is required")
		return
	}
	if !countryCodeRe.MatchString(code) {
		v.fail("countryCode", "Country code must start with + and be 2-4 digits")
	}
}

func (v *validator) mobile(mobile string) {
	if n := len(mobile); n < minMobileDigits || n > maxMobileDigits {
		v.fail("mobile", "Mobile number must be between 7 and 15 digits")
		return
	}
	if !mobileRe.MatchString(mobile) {
		v.fail("mobile", "Mobile number must contain only digits")
	}
}

func (v *validator) password(pw string) {
	if len(pw) < minPasswordLen {
		v.fail("password", "Password must be at least 6 characters long")
		return
	}
	if len(pw) > maxPasswordBytes {
		v.fail("password", "Password must be at most 72 bytes long")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeCreate trims every field, lower-cases the email and applies the
// default country code.
func normalizeCreate(in CreateInput) CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.CountryCode = strings.TrimSpace(in.CountryCode)
	if in.CountryCode == "" {
		in.CountryCode = DefaultCountryCode
	}
	in.Mobile = strings.TrimSpace(in.Mobile)
	return in
}

func validateCreate(in CreateInput) error {
	var v validator
	v.name(in.Name)
	v.email(in.Email)
	v.countryCode(in.CountryCode)
	v.mobile(in.Mobile)
	v.password(in.Password)
	return v.err()
}

// normalizeUpdate trims supplied fields and drops an empty password.
func normalizeUpdate(in UpdateInput) UpdateInput {
	trim := func(p *string, fn func(string) string) *string {
		if p == nil {
			return nil
		}
		s := fn(*p)
		return &s
	}
	in.Name = trim(in.Name, strings.TrimSpace)
	in.Email = trim(in.Email, normalizeEmail)
	in.CountryCode = trim(in.CountryCode, strings.TrimSpace)
	in.Mobile = trim(in.Mobile, strings.TrimSpace)
	if in.Password != nil && *in.Password == "" {
		in.Password = nil
	}
	return in
}

func validateUpdate(in UpdateInput) error {
	var v validator
	if in.Name != nil {
		v.name(*in.Name)
	}
	if in.Email != nil {
		v.email(*in.Email)
	}
	if in.CountryCode != nil {
		v.countryCode(*in.CountryCode)
	}
	if in.Mobile != nil {
		v.mobile(*in.Mobile)
	}
	if in.Password != nil {
		v.password(*in.Password)
	}
	return v.err()
}
