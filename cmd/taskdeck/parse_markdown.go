package main

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"taskdeck/internal/service"
)

var listItemRegex = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)

// parseMarkdown splits a markdown document into YAML front matter and
// top-level list items. Each list item becomes one task name.
func parseMarkdown(input string) (map[string]any, []string, error) {
	frontMatter := map[string]any{}
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return nil, nil, fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &frontMatter); err != nil {
			return nil, nil, err
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		match := listItemRegex.FindStringSubmatch(line)
		if len(match) == 2 {
			item := strings.TrimSpace(match[1])
			if item != "" {
				items = append(items, item)
			}
		}
	}

	return frontMatter, items, nil
}

// frontMatterToInput maps front matter keys onto creation defaults
// shared by every list item in the file.
func frontMatterToInput(frontMatter map[string]any) (service.TaskCreateInput, error) {
	in := service.TaskCreateInput{}

	if value, ok := frontMatter["priority"]; ok {
		switch v := value.(type) {
		case int:
			in.Priority = &v
		case int64:
			converted := int(v)
			in.Priority = &converted
		case float64:
			converted := int(v)
			in.Priority = &converted
		default:
			return in, fmt.Errorf("front matter priority must be a number")
		}
	}
	if value, ok := frontMatter["status"].(string); ok {
		in.Status = &value
	}
	if value, ok := frontMatter["description"].(string); ok {
		in.Description = value
	}
	if value, ok := frontMatter["parent_id"].(string); ok {
		in.ParentID = value
	}
	if value, ok := frontMatter["owner"].(string); ok {
		in.OwnerUID = value
	}
	if value, ok := frontMatter["due"].(string); ok {
		due, err := parseDueDate(value)
		if err != nil {
			return in, err
		}
		in.DueDate = &due
	}

	return in, nil
}
