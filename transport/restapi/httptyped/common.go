package httptyped

import (
	"github.com/yusufsyaifudin/lamaran/internal/svc/applicationsvc"
)

// SendResult is the answer of one application submission.
type SendResult struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Error         string            `json:"error,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	ApplicationID string            `json:"applicationId,omitempty"`
}

// ApplicationForm carries the form values using the same keys the form posts.
type ApplicationForm struct {
	ApplicantName      string `json:"applicantName"`
	CurrentTitle       string `json:"currentTitle"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Location           string `json:"location"`
	RoleTitle          string `json:"roleTitle"`
	CompanyName        string `json:"companyName"`
	CompanyEmail       string `json:"companyEmail"`
	Date               string `json:"date"`
	HRName             string `json:"hrName"`
	HRTitle            string `json:"hrTitle"`
	YearsExperience    string `json:"yearsExperience"`
	Field              string `json:"field"`
	MainParagraph      string `json:"mainParagraph"`
	CompanyAttraction  string `json:"companyAttraction"`
	CompanyAchievement string `json:"companyAchievement"`
	PreviousRole       string `json:"previousRole"`
	PreviousCompany    string `json:"previousCompany"`
	Achievement1       string `json:"achievement1"`
	Achievement2       string `json:"achievement2"`
}

func ApplicationFormFromSvc(s applicationsvc.Submission) ApplicationForm {
	return ApplicationForm{
		ApplicantName:      s.ApplicantName,
		CurrentTitle:       s.CurrentTitle,
		Email:              s.Email,
		Phone:              s.Phone,
		Location:           s.Location,
		RoleTitle:          s.RoleTitle,
		CompanyName:        s.CompanyName,
		CompanyEmail:       s.CompanyEmail,
		Date:               s.Date,
		HRName:             s.HRName,
		HRTitle:            s.HRTitle,
		YearsExperience:    s.YearsExperience,
		Field:              s.Field,
		MainParagraph:      s.MainParagraph,
		CompanyAttraction:  s.CompanyAttraction,
		CompanyAchievement: s.CompanyAchievement,
		PreviousRole:       s.PreviousRole,
		PreviousCompany:    s.PreviousCompany,
		Achievement1:       s.Achievement1,
		Achievement2:       s.Achievement2,
	}
}
