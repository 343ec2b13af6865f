package applicationsvc

import "time"

const (
	DefaultHRName          = "Hiring Manager"
	DefaultHRTitle         = "Hiring Manager"
	DefaultYearsExperience = "1+"
	DefaultField           = "Software Development"

	DefaultMainParagraph = "I am writing to express my strong interest in this position. " +
		"With my extensive background in software development and proven track record of delivering high-quality solutions, " +
		"I am confident in my ability to contribute effectively to your team. " +
		"My passion for technology and commitment to excellence align perfectly with the innovative work your company is known for."

	DefaultCompanyAttraction = "your company's reputation for fostering innovation, commitment to cutting-edge technology, " +
		"and dedication to creating impactful solutions that make a real difference in the industry"

	DefaultCompanyAchievement = "your recent achievements in digital transformation and the successful launch of innovative products " +
		"that have set new industry standards"

	DefaultAchievement1 = "Successfully led cross-functional teams to deliver complex projects on time and within budget, " +
		"resulting in significant improvements in system performance and user satisfaction"

	DefaultAchievement2 = "Implemented innovative solutions that increased operational efficiency by 40% and reduced costs " +
		"while maintaining high quality standards and exceeding stakeholder expectations"
)

// DefaultSubmission is the initial state of the form, date is today in YYYY-MM-DD.
func DefaultSubmission(now time.Time) Submission {
	return Submission{
		Date:               now.Format("2006-01-02"),
		HRName:             DefaultHRName,
		HRTitle:            DefaultHRTitle,
		YearsExperience:    DefaultYearsExperience,
		Field:              DefaultField,
		MainParagraph:      DefaultMainParagraph,
		CompanyAttraction:  DefaultCompanyAttraction,
		CompanyAchievement: DefaultCompanyAchievement,
		Achievement1:       DefaultAchievement1,
		Achievement2:       DefaultAchievement2,
	}
}
