package port

import "time"

// DocumentKind は検索インデックスに同期されるドキュメントの種別です。
type DocumentKind string

const (
	KindJob       DocumentKind = "job"
	KindApplicant DocumentKind = "applicant"
	KindCompany   DocumentKind = "company"
)

// Valid reports whether k is one of the mirrored kinds.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindJob, KindApplicant, KindCompany:
		return true
	default:
		return false
	}
}

// Location は求人の勤務地です。
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Remote  bool   `json:"remote"`
	// Type は onsite / remote / hybrid のいずれかです。
	Type string `json:"type,omitempty"`
}

// Salary は求人の給与レンジです。
type Salary struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Period   string   `json:"period,omitempty"`
}

// JobDocument は検索サブシステムから見た求人です。
type JobDocument struct {
	ID               string    `json:"id"`
	CreatedBy        string    `json:"createdBy,omitempty"`
	Title            string    `json:"title"`
	Company          string    `json:"company,omitempty"`
	Description      string    `json:"description,omitempty"`
	Requirements     []string  `json:"requirements,omitempty"`
	Responsibilities []string  `json:"responsibilities,omitempty"`
	Location         Location  `json:"location"`
	Salary           Salary    `json:"salary"`
	JobType          string    `json:"jobType,omitempty"`
	ExperienceLevel  string    `json:"experienceLevel,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Skill は応募者のスキルです。
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// WorkExperience は応募者の職歴です。
type WorkExperience struct {
	Position    string `json:"position"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education は応募者の学歴です。
type Education struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
}

// ApplicantDocument は検索サブシステムから見た応募者プロフィールです。
type ApplicantDocument struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"userId,omitempty"`
	Headline            string           `json:"headline,omitempty"`
	Summary             string           `json:"summary,omitempty"`
	Skills              []Skill          `json:"skills,omitempty"`
	WorkExperience      []WorkExperience `json:"workExperience,omitempty"`
	Education           []Education      `json:"education,omitempty"`
	PreferredJobTypes   []string         `json:"preferredJobTypes,omitempty"`
	PreferredLocations  []string         `json:"preferredLocations,omitempty"`
	PreferredIndustries []string         `json:"preferredIndustries,omitempty"`
	IsRemoteOnly        bool             `json:"isRemoteOnly"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// SkillNames returns the names of the applicant's skills, skipping blanks.
func (a ApplicantDocument) SkillNames() []string {
	names := make([]string, 0, len(a.Skills))
	for _, s := range a.Skills {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// PastPositions returns the positions held in the applicant's work history.
func (a ApplicantDocument) PastPositions() []string {
	positions := make([]string, 0, len(a.WorkExperience))
	for _, w := range a.WorkExperience {
		if w.Position != "" {
			positions = append(positions, w.Position)
		}
	}
	return positions
}

// CompanyLocation は企業の所在地です。
type CompanyLocation struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// CompanyDocument は検索サブシステムから見た企業です。
type CompanyDocument struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Industry    []string        `json:"industry,omitempty"`
	Location    CompanyLocation `json:"location"`
	Website     string          `json:"website,omitempty"`
	Size        string          `json:"size,omitempty"`
	Founded     int             `json:"founded,omitempty"`
	Specialties []string        `json:"specialties,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
