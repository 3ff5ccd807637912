// Package screening extracts structured profiles from resumes and ranks
// candidates against a job posting with the help of a completion provider.
package screening

// ExperienceUnknown is used when the experience level cannot be determined.
const ExperienceUnknown = "Unknown"

// CandidateProfile is one candidate submitted for ranking.
type CandidateProfile struct {
	ResumeID        int      `json:"resume_id"`
	CandidateName   string   `json:"candidate_name"`
	Skills          []string `json:"skills"`
	ExperienceLevel *string  `json:"experience_level"`
	Summary         *string  `json:"summary"`
}

// JobPosting is the job the candidates are ranked against.
type JobPosting struct {
	JobID           string   `json:"job_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	ExperienceLevel string   `json:"experience_level"`
}

// RankingScore is the model's assessment of one candidate.
type RankingScore struct {
	ResumeID             int     `json:"resume_id"`
	JobID                string  `json:"job_id"`
	SkillMatchScore      float64 `json:"skill_match_score"`
	ExperienceMatchScore float64 `json:"experience_match_score"`
	OverallScore         float64 `json:"overall_score"`
	Summary              string  `json:"summary"`
}

// SuitableRole is a job title the candidate could fill, scored 1 to 10.
type SuitableRole struct {
	Role  string `json:"role"`
	Score int    `json:"score"`
}

// ParsedResume is the structured form of a resume document.
type ParsedResume struct {
	CandidateName   string         `json:"candidate_name"`
	Skills          []string       `json:"skills"`
	ExperienceLevel *string        `json:"experience_level"`
	Summary         *string        `json:"summary"`
	SuitableRoles   []SuitableRole `json:"suitable_roles"`
}
