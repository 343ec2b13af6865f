package assets

import (
	_ "embed"
)

const ServiceName = "lamaran"

// ApplicationTemplate is the HTML body of the application email.
// Placeholders are written as {{NAME}} and replaced literally.
//
//go:embed templates/application.html
var ApplicationTemplate string
