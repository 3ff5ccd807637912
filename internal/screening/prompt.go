package screening

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/resume-rank/internal/utils"
)

const (
	resumeTextLimit = 3000
	summaryLimit    = 300

	noSummary     = "No summary available"
	notSpecified  = "Not specified"
	listSeparator = ", "

	// jsonOnlyInstruction is sent as the system prompt with every request.
	jsonOnlyInstruction = "Respond with a single JSON object and nothing else."
)

var (
	//go:embed prompts/extract.md
	extractTemplate string

	//go:embed prompts/rank.md
	rankTemplate string
)

// BuildExtractionPrompt renders the extraction instructions for the given
// document text. Only the first 3000 characters of text are included.
func BuildExtractionPrompt(text string) string {
	r := strings.NewReplacer("{{RESUME_TEXT}}", utils.Truncate(text, resumeTextLimit))
	return r.Replace(extractTemplate)
}

// BuildRankingPrompt renders the ranking instructions for job and candidates.
func BuildRankingPrompt(job JobPosting, candidates []CandidateProfile) string {
	r := strings.NewReplacer(
		"{{JOB_TITLE}}", job.Title,
		"{{JOB_DESCRIPTION}}", job.Description,
		"{{REQUIRED_SKILLS}}", strings.Join(job.RequiredSkills, listSeparator),
		"{{PREFERRED_SKILLS}}", strings.Join(job.PreferredSkills, listSeparator),
		"{{EXPERIENCE_LEVEL}}", job.ExperienceLevel,
		"{{CANDIDATES}}", formatCandidates(candidates),
	)
	return r.Replace(rankTemplate)
}

func formatCandidates(candidates []CandidateProfile) string {
	blocks := make([]string, 0, len(candidates))
	for i, c := range candidates {
		skills := notSpecified
		if len(c.Skills) > 0 {
			skills = strings.Join(c.Skills, listSeparator)
		}

		experience := ExperienceUnknown
		if c.ExperienceLevel != nil && *c.ExperienceLevel != "" {
			experience = *c.ExperienceLevel
		}

		summary := noSummary
		if c.Summary != nil && *c.Summary != "" {
			summary = utils.Truncate(*c.Summary, summaryLimit)
		}

		blocks = append(blocks, fmt.Sprintf(
			"### Candidate %d (resume_id: %d)\n- Name: %s\n- Skills: %s\n- Experience Level: %s\n- Summary: %s\n",
			i+1, c.ResumeID, c.CandidateName, skills, experience, summary,
		))
	}
	return strings.Join(blocks, "\n")
}
