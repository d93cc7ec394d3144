package pdf

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"resumedesk/internal/resume"
)

const defaultSkillGroup = "Technical Skills"

// Contact 是页眉中的一项联系方式；Href 非空时渲染为链接。
type Contact struct {
	Label string
	Value string
	Href  string
}

// Entry 对应工作经历或教育经历中的一条。
type Entry struct {
	Dates    string
	Title    string
	Subtitle string
	Bullets  []string
}

type SkillGroup struct {
	Category string
	Skills   string
}

type Project struct {
	Title        string
	URL          string
	Technologies string
	Bullets      []string
}

// Document 是渲染模板所需的全部数据，已完成分组和拆行。
type Document struct {
	Title       string
	Name        string
	Contacts    []Contact
	Summary     []string
	Experiences []Entry
	Education   []Entry
	SkillGroups []SkillGroup
	Projects    []Project
}

// BuildDocument 把简历聚合整理为固定版式的视图模型。
func BuildDocument(agg *resume.Aggregate) Document {
	doc := Document{
		Title: strings.TrimSpace(agg.Resume.ResumeName),
		Name:  strings.TrimSpace(agg.Profile.FullName),
	}
	if doc.Title == "" {
		doc.Title = "Resume"
	}
	if doc.Name == "" {
		doc.Name = agg.OwnerName
	}

	p := agg.Profile
	doc.Contacts = appendContact(doc.Contacts, "", p.Address, false)
	doc.Contacts = appendContact(doc.Contacts, "Email", p.Email, false)
	doc.Contacts = appendContact(doc.Contacts, "Phone", p.Phone, false)
	doc.Contacts = appendContact(doc.Contacts, "LinkedIn", p.LinkedinURL, true)
	doc.Contacts = appendContact(doc.Contacts, "GitHub", p.GithubURL, true)
	doc.Contacts = appendContact(doc.Contacts, "Website", p.WebsiteURL, true)

	if summary := strings.TrimSpace(agg.Resume.Summary); summary != "" {
		doc.Summary = strings.Split(normalizeNewlines(summary), "\n")
	}

	for _, e := range agg.Experiences {
		doc.Experiences = append(doc.Experiences, Entry{
			Dates:    dateRange(formatDate(e.StartDate), strings.TrimSpace(e.EndDate)),
			Title:    e.JobTitle,
			Subtitle: e.CompanyName,
			Bullets:  Bullets(e.Description),
		})
	}

	for _, e := range agg.Education {
		title := strings.TrimSpace(e.Degree)
		if major := strings.TrimSpace(e.Major); major != "" {
			if title == "" {
				title = major
			} else {
				title += " in " + major
			}
		}
		doc.Education = append(doc.Education, Entry{
			Dates:    formatDate(e.GraduationDate),
			Title:    title,
			Subtitle: e.Institution,
		})
	}

	doc.SkillGroups = groupSkills(agg)

	for _, pr := range agg.Projects {
		doc.Projects = append(doc.Projects, Project{
			Title:        pr.ProjectTitle,
			URL:          strings.TrimSpace(pr.ProjectURL),
			Technologies: strings.TrimSpace(pr.Technologies),
			Bullets:      Bullets(pr.Description),
		})
	}
	return doc
}

// Bullets 按行拆分描述文本，丢弃空行。
func Bullets(text string) []string {
	var out []string
	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// 分组顺序按首次出现的顺序，组内用 ", " 连接。
func groupSkills(agg *resume.Aggregate) []SkillGroup {
	var (
		order  []string
		byType = map[string][]string{}
	)
	for _, s := range agg.Skills {
		name := strings.TrimSpace(s.SkillName)
		if name == "" {
			continue
		}
		category := strings.TrimSpace(s.SkillType)
		if category == "" {
			category = defaultSkillGroup
		}
		if _, seen := byType[category]; !seen {
			order = append(order, category)
		}
		byType[category] = append(byType[category], name)
	}

	groups := make([]SkillGroup, 0, len(order))
	for _, category := range order {
		groups = append(groups, SkillGroup{
			Category: category,
			Skills:   strings.Join(byType[category], ", "),
		})
	}
	return groups
}

// Filename 返回下载文件名：空格替换为下划线。
func Filename(resumeName string) string {
	name := strings.TrimSpace(resumeName)
	if name == "" {
		name = "resume"
	}
	return strings.ReplaceAll(name, " ", "_") + ".pdf"
}

func appendContact(list []Contact, label, value string, link bool) []Contact {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	c := Contact{Label: label, Value: value}
	if link {
		c.Href = value
	}
	return append(list, c)
}

func formatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format("2006-01-02")
}

func dateRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
