// internal/service/render.go
package service

import (
	"strings"

	"github.com/wasender/wablast-backend/internal/model"
)

// RenderTemplate substitutes {placeholder} tokens.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// pickTemplate chooses the message body for a contact: the gender-matching
// template when present, otherwise whichever one the request carries.
func pickTemplate(req model.BlastRequest, gender model.Gender) string {
	male := strings.TrimSpace(req.MaleMessage)
	female := strings.TrimSpace(req.FemaleMessage)

	switch gender {
	case model.GenderFemale:
		if female != "" {
			return female
		}
		return male
	default:
		if male != "" {
			return male
		}
		return female
	}
}

// RenderMessage produces the final text for one contact.
func RenderMessage(req model.BlastRequest, c model.BlastContact) string {
	tpl := pickTemplate(req, c.Gender)
	if tpl == "" {
		return ""
	}
	first := c.Name
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	return RenderTemplate(tpl, map[string]string{
		"name":       c.Name,
		"first_name": first,
		"phone":      c.Phone,
	})
}
