package metric

// Tag constants
const (
	TagEnv             = "env"
	TagService         = "service"
	TagPath            = "path"
	TagMethod          = "method"
	TagHttpStatusCode  = "http_status_code"
	TagExternalService = "external_service"
)

type Tag struct {
	Name  string
	Value string
}

func NewTag(name, value string) Tag {
	return Tag{
		Name:  name,
		Value: value,
	}
}

// BuildTag builds a tag list from the given tags
func BuildTag(tags ...Tag) []string {
	allTags := make([]string, 0)
	for _, tag := range tags {
		allTags = append(allTags, TagAsString(tag.Name, tag.Value))
	}
	return allTags
}

func TagAsString(name string, value string) string {
	return name + ":" + value
}
