package components

import "github.com/a-h/templ"

func cellStyle(fill string) templ.Attributes {
	if fill == "" {
		return nil
	}
	return templ.Attributes{"style": "background:" + fill}
}
