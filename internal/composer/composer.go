// Package composer renders the application email body.
//
// Rendering is literal placeholder substitution over a fixed HTML template:
// values are inserted verbatim (no HTML escaping) and nothing is evaluated.
package composer

import (
	"strings"

	"github.com/yusufsyaifudin/lamaran/assets"
)

// EmptyLink is used for optional links that are not configured.
const EmptyLink = "#"

// Fields is the full template context of the application email.
type Fields struct {
	ApplicantName      string
	CurrentTitle       string
	Email              string
	Phone              string
	Location           string
	HRName             string
	HRTitle            string
	CompanyName        string
	RoleTitle          string
	YearsExperience    string
	Field              string
	MainParagraph      string
	CompanyAttraction  string
	CompanyAchievement string
	PreviousRole       string
	PreviousCompany    string
	Achievement1       string
	Achievement2       string
	LinkedinURL        string
	GithubURL          string
	WebsiteURL         string
	CVURL              string // optional, EmptyLink when empty
	PortfolioURL       string // optional, EmptyLink when empty
	SentDate           string
}

// Placeholders returns placeholder name and value pairs, in template order.
func (f Fields) Placeholders() []string {
	return []string{
		"APPLICANT_NAME", f.ApplicantName,
		"CURRENT_TITLE", f.CurrentTitle,
		"EMAIL", f.Email,
		"PHONE", f.Phone,
		"LOCATION", f.Location,
		"HR_NAME", f.HRName,
		"HR_TITLE", f.HRTitle,
		"COMPANY_NAME", f.CompanyName,
		"ROLE_TITLE", f.RoleTitle,
		"YEARS_EXPERIENCE", f.YearsExperience,
		"FIELD", f.Field,
		"MAIN_PARAGRAPH", f.MainParagraph,
		"COMPANY_ATTRACTION", f.CompanyAttraction,
		"COMPANY_ACHIEVEMENT", f.CompanyAchievement,
		"PREVIOUS_ROLE", f.PreviousRole,
		"PREVIOUS_COMPANY", f.PreviousCompany,
		"ACHIEVEMENT_1", f.Achievement1,
		"ACHIEVEMENT_2", f.Achievement2,
		"LINKEDIN_URL", f.LinkedinURL,
		"GITHUB_URL", f.GithubURL,
		"WEBSITE_URL", f.WebsiteURL,
		"CV_URL", orEmptyLink(f.CVURL),
		"PORTFOLIO_URL", orEmptyLink(f.PortfolioURL),
		"SENT_DATE", f.SentDate,
	}
}

// Compose renders the built-in application template.
func Compose(f Fields) string {
	return Render(assets.ApplicationTemplate, f)
}

// Render substitutes every {{NAME}} placeholder in tmpl with its value from f.
// Substitution is a single pass, so a value that itself looks like a placeholder is kept as is.
func Render(tmpl string, f Fields) string {
	pairs := f.Placeholders()
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		oldnew = append(oldnew, "{{"+pairs[i]+"}}", pairs[i+1])
	}

	return strings.NewReplacer(oldnew...).Replace(tmpl)
}

// Subject returns the subject line for an application to roleTitle.
func Subject(roleTitle string) string {
	return "Cover Letter for " + roleTitle
}

func orEmptyLink(s string) string {
	if strings.TrimSpace(s) == "" {
		return EmptyLink
	}

	return s
}
