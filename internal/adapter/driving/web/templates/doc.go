// Package templates holds the templ components shared by every page.
package templates

//go:generate go tool templ generate
