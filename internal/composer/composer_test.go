package composer_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/lamaran/internal/composer"
)

var placeholderRegex = regexp.MustCompile(`\{\{[A-Z0-9_]+\}\}`)

func fullFields() composer.Fields {
	return composer.Fields{
		ApplicantName:      "Jane Doe",
		CurrentTitle:       "Backend Engineer",
		Email:              "jane@example.com",
		Phone:              "+62 812 3456 7890",
		Location:           "Yogyakarta",
		HRName:             "Alex Hiring",
		HRTitle:            "Talent Partner",
		CompanyName:        "Acme & Sons",
		RoleTitle:          "Senior Go Engineer",
		YearsExperience:    "7+",
		Field:              "Distributed Systems",
		MainParagraph:      "I have spent years building <em>reliable</em> services that move a lot of data around.",
		CompanyAttraction:  "the engineering culture around small teams",
		CompanyAchievement: "the migration of the payment core",
		PreviousRole:       "Staff Engineer",
		PreviousCompany:    "Example Corp",
		Achievement1:       "cut p99 latency of the checkout API in half",
		Achievement2:       "introduced tracing across forty services",
		LinkedinURL:        "https://linkedin.example/jane",
		GithubURL:          "https://github.example/jane",
		WebsiteURL:         "https://jane.example",
		CVURL:              "https://jane.example/resume.pdf",
		PortfolioURL:       "https://jane.example/work",
		SentDate:           "10/16/2026",
	}
}

func TestCompose(t *testing.T) {
	t.Run("every value is present verbatim", func(t *testing.T) {
		f := fullFields()
		body := composer.Compose(f)

		pairs := f.Placeholders()
		for i := 0; i < len(pairs); i += 2 {
			assert.Contains(t, body, pairs[i+1], "value of %s", pairs[i])
		}

		// no escaping
		assert.Contains(t, body, "Acme & Sons")
		assert.Contains(t, body, "<em>reliable</em>")
		assert.Empty(t, placeholderRegex.FindAllString(body, -1))
	})

	t.Run("optional links default to #", func(t *testing.T) {
		f := fullFields()
		f.CVURL = ""
		f.PortfolioURL = "  "

		body := composer.Compose(f)
		assert.Contains(t, body, `<a href="#" style="background: #ff7675;`)
		assert.Contains(t, body, `<a href="#" style="background: #74b9ff;`)
	})

	t.Run("values looking like placeholders are not expanded", func(t *testing.T) {
		f := fullFields()
		f.MainParagraph = "literal {{EMAIL}} stays"

		body := composer.Compose(f)
		assert.Contains(t, body, "literal {{EMAIL}} stays")
	})
}

func TestRender(t *testing.T) {
	out := composer.Render("Dear {{HR_NAME}} at {{COMPANY_NAME}}, see {{CV_URL}} {{UNKNOWN}}", composer.Fields{
		HRName:      "Alex",
		CompanyName: "Acme",
	})

	assert.Equal(t, "Dear Alex at Acme, see # {{UNKNOWN}}", out)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Cover Letter for Senior Go Engineer", composer.Subject("Senior Go Engineer"))
}
