// Package templates holds the templ components returned to HTMX clients.
//
// Edit the .templ files and regenerate with `templ generate`.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.2.793 generate
