package pdf

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"resumedesk/internal/database"
	"resumedesk/internal/resume"
)

func date(s string) *datatypes.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	d := datatypes.Date(t)
	return &d
}

func sampleAggregate() *resume.Aggregate {
	return &resume.Aggregate{
		Resume:    database.Resume{ID: 3, ResumeName: "Senior Engineer", Summary: "Line one\r\nLine two"},
		OwnerName: "Session Name",
		Profile: database.UserProfile{
			FullName:  "Ada Lovelace",
			Email:     "ada@example.com",
			GithubURL: "https://github.com/ada",
		},
		Experiences: []database.Experience{{
			CompanyName: "Acme",
			JobTitle:    "Eng",
			StartDate:   date("2020-01-01"),
			EndDate:     "2022-01-01",
			Description: "Did X\n\n  \nDid Y\n",
		}},
		Education: []database.Education{{
			Institution:    "MIT",
			Degree:         "BSc",
			Major:          "CS",
			GraduationDate: date("2019-06-01"),
		}},
		Skills: []database.Skill{
			{SkillName: "Go", SkillType: "Languages"},
			{SkillName: "Rust", SkillType: "Languages"},
			{SkillName: "Docker", SkillType: ""},
		},
		Projects: []database.Project{
			{ProjectTitle: "resumedesk", ProjectURL: "https://example.com/rd", Description: "Built it"},
			{ProjectTitle: "bare"},
		},
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleAggregate())

	if doc.Name != "Ada Lovelace" {
		t.Fatalf("name = %q", doc.Name)
	}
	if len(doc.Contacts) != 2 || doc.Contacts[0].Label != "Email" || doc.Contacts[1].Href != "https://github.com/ada" {
		t.Fatalf("only non-blank contacts should appear: %+v", doc.Contacts)
	}
	if !reflect.DeepEqual(doc.Summary, []string{"Line one", "Line two"}) {
		t.Fatalf("summary lines = %q", doc.Summary)
	}

	exp := doc.Experiences[0]
	if exp.Dates != "2020-01-01 - 2022-01-01" {
		t.Fatalf("dates = %q", exp.Dates)
	}
	if !reflect.DeepEqual(exp.Bullets, []string{"Did X", "Did Y"}) {
		t.Fatalf("bullets = %q", exp.Bullets)
	}

	if doc.Education[0].Title != "BSc in CS" || doc.Education[0].Dates != "2019-06-01" {
		t.Fatalf("education = %+v", doc.Education[0])
	}

	want := []SkillGroup{
		{Category: "Languages", Skills: "Go, Rust"},
		{Category: "Technical Skills", Skills: "Docker"},
	}
	if !reflect.DeepEqual(doc.SkillGroups, want) {
		t.Fatalf("skill groups = %+v", doc.SkillGroups)
	}

	if doc.Projects[1].URL != "" || doc.Projects[1].Bullets != nil {
		t.Fatalf("bare project should have no extras: %+v", doc.Projects[1])
	}
}

func TestBuildDocument_FallsBackToAccountName(t *testing.T) {
	agg := sampleAggregate()
	agg.Profile.FullName = "  "
	if doc := BuildDocument(agg); doc.Name != "Session Name" {
		t.Fatalf("name = %q", doc.Name)
	}
}

func TestRenderHTML(t *testing.T) {
	agg := sampleAggregate()
	agg.Resume.Summary = "<script>alert(1)</script>"
	agg.Profile.WebsiteURL = "javascript:alert(1)"

	html, err := RenderHTML(BuildDocument(agg))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"<h1>Ada Lovelace</h1>",
		"<h2>Work Experience</h2>",
		"<li>Did X</li><li>Did Y</li>",
		"BSc in CS",
		"Languages:",
		"Go, Rust",
		"Technical Skills:",
		`(<a href="https://example.com/rd">https://example.com/rd</a>)`,
		"&lt;script&gt;",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("user markup must be escaped")
	}
	if strings.Contains(html, `href="javascript:`) {
		t.Fatal("unsafe URLs must be neutralised")
	}
	if strings.Contains(html, "Technologies:") {
		t.Fatal("technologies line should only appear when present")
	}
}

func TestRenderHTML_OmitsEmptySections(t *testing.T) {
	html, err := RenderHTML(BuildDocument(&resume.Aggregate{OwnerName: "Solo"}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, section := range []string{"Summary", "Work Experience", "Education", "Skills", "Projects"} {
		if strings.Contains(html, "<h2>"+section+"</h2>") {
			t.Errorf("empty section %q rendered", section)
		}
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Senior Go Engineer": "Senior_Go_Engineer.pdf",
		"cv":                 "cv.pdf",
		"   ":                "resume.pdf",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}
