package resume

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/form/v4"
)

// ErrInvalidForm 表示表单无法解析，例如 resume_id 不是正整数。
var ErrInvalidForm = errors.New("resume: invalid form")

// 字段名形如 experiences[0].company_name、profile.full_name。
type submission struct {
	ResumeID    string          `form:"resume_id"`
	ResumeName  string          `form:"resume_name"`
	Summary     string          `form:"summary"`
	Profile     ProfileInput    `form:"profile"`
	Experiences []ExperienceRow `form:"experiences"`
	Education   []EducationRow  `form:"education"`
	Skills      []SkillRow      `form:"skills"`
	Projects    []ProjectRow    `form:"projects"`
}

var formDecoder = newFormDecoder()

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetMaxArraySize(200)
	// 所有字符串字段统一去掉首尾空白
	d.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		if len(vals) == 0 {
			return "", nil
		}
		return strings.TrimSpace(vals[0]), nil
	}, "")
	return d
}

// ParseForm 把 HTML 表单字段转换为 SaveInput，行按下标数值排序，跳过的下标不产生空行。
// resume_id 存在但不是正整数时返回 ErrInvalidForm。
func ParseForm(values url.Values) (SaveInput, error) {
	var sub submission
	if err := formDecoder.Decode(&sub, values); err != nil {
		return SaveInput{}, errors.Join(ErrInvalidForm, err)
	}

	in := SaveInput{
		ResumeName:  sub.ResumeName,
		Summary:     sub.Summary,
		Profile:     sub.Profile,
		Experiences: compactRows(sub.Experiences),
		Education:   compactRows(sub.Education),
		Skills:      compactRows(sub.Skills),
		Projects:    compactRows(sub.Projects),
	}
	if sub.ResumeID != "" {
		id, err := strconv.ParseUint(sub.ResumeID, 10, 64)
		if err != nil || id == 0 {
			return SaveInput{}, ErrInvalidForm
		}
		in.ResumeID = uint(id)
	}
	return in, nil
}

func compactRows[T comparable](rows []T) []T {
	var zero T
	var out []T
	for _, r := range rows {
		if r != zero {
			out = append(out, r)
		}
	}
	return out
}
