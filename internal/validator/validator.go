package validator

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	EmailRX    = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	UsernameRX = regexp.MustCompile(`^[\w.@+-]+$`)
	SlugRX     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ImageFormats lists the formats accepted by CheckImage.
var ImageFormats = []string{"gif", "jpeg", "png"}

type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) IsValid() bool {
	return len(v.Errors) == 0
}

// AddError keeps the first message reported for a key.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

func (v *Validator) CheckNotBlank(value, key, message string) {
	v.Check(strings.TrimSpace(value) != "", key, message)
}

func (v *Validator) CheckMaxLength(value string, n int, key, message string) {
	v.Check(utf8.RuneCountInString(value) <= n, key, message)
}

func (v *Validator) CheckEmail(email, key, message string) {
	v.Check(IsMatch(email, EmailRX), key, message)
}

// CheckImage accepts data whose header decodes as one of ImageFormats.
// It returns the detected format name.
func (v *Validator) CheckImage(data []byte, key, message string) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		v.AddError(key, message)
		return ""
	}
	return format
}

func IsMatch(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}
