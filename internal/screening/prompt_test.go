package screening

import (
	"strings"
	"testing"
)

func TestBuildExtractionPromptTruncatesText(t *testing.T) {
	text := strings.Repeat("a", resumeTextLimit) + "TAIL"

	prompt := BuildExtractionPrompt(text)

	if strings.Contains(prompt, "TAIL") {
		t.Fatalf("expected text beyond %d characters to be cut", resumeTextLimit)
	}

	if !strings.Contains(prompt, strings.Repeat("a", resumeTextLimit)) {
		t.Fatalf("expected the first %d characters to be kept", resumeTextLimit)
	}

	if strings.Contains(prompt, "{{RESUME_TEXT}}") {
		t.Fatalf("placeholder was not replaced")
	}

	for _, want := range []string{
		`"candidate_name"`,
		`"suitable_roles"`,
		`"experience_level": "<Junior | Mid | Senior>"`,
		"Junior: 0-2 years",
		"Mid: 3-6 years",
		"Senior: 7+ years",
		"3 to 6 job titles",
		"9-10: excellent fit",
		"1-2: weak fit",
		"Order the roles by score, highest first.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to mention %q", want)
		}
	}
}

func TestBuildRankingPromptCandidateDefaults(t *testing.T) {
	job := JobPosting{
		JobID:           "j",
		Title:           "Data Engineer",
		Description:     "Pipelines. Mentions {{CANDIDATES}} literally.",
		RequiredSkills:  []string{"Spark", "SQL"},
		PreferredSkills: []string{"Airflow"},
		ExperienceLevel: "Senior",
	}

	long := strings.Repeat("s", summaryLimit) + "CUT"
	candidates := []CandidateProfile{
		{ResumeID: 3, CandidateName: "No Data"},
		{ResumeID: 4, CandidateName: "Empty", ExperienceLevel: strPtr(""), Summary: strPtr("")},
		{ResumeID: 5, CandidateName: "Long", Skills: []string{"Go"}, ExperienceLevel: strPtr("Mid"), Summary: &long},
	}

	prompt := BuildRankingPrompt(job, candidates)

	for _, want := range []string{
		"- Title: Data Engineer",
		"- Required Skills: Spark, SQL",
		"- Preferred Skills: Airflow",
		"- Required Experience Level: Senior",
		"### Candidate 1 (resume_id: 3)",
		"- Skills: Not specified",
		"- Experience Level: Unknown",
		"- Summary: No summary available",
		"### Candidate 3 (resume_id: 5)",
		"- Skills: Go",
		"- Experience Level: Mid",
		"0.6 * skill_match_score + 0.4 * experience_match_score",
		"Required skills weigh 70%, preferred skills weigh 30%.",
		"Exact match: 90-100",
		"One level above: 80-90",
		"One level below: 50-70",
		"Two or more levels apart: 20-50",
		"Include one entry for every resume_id listed above.",
		`"resume_id": <integer>`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}

	if strings.Count(prompt, "- Summary: No summary available") != 2 {
		t.Fatalf("expected both empty summaries to use the default")
	}

	if strings.Contains(prompt, "CUT") {
		t.Fatalf("expected summary to be cut at %d characters", summaryLimit)
	}

	if !strings.Contains(prompt, "Mentions {{CANDIDATES}} literally.") {
		t.Fatalf("expected placeholders inside job text to be left alone")
	}
}
