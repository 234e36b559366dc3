package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ScenesDirName is the project subdirectory holding scene files.
	ScenesDirName = "scenes"
	// AssetsDirName is the project subdirectory the @assets/ prefix maps to.
	AssetsDirName = "assets"

	assetPrefix          = "@assets/"
	frontmatterDelimiter = "---"
)

// Parse splits a scene file into YAML frontmatter and markdown narration
// script. The frontmatter block is delimited by "---" lines at the top of
// the file; everything after the closing delimiter is the script, trimmed.
func Parse(content, sourcePath string) (Scene, error) {
	fm, body, err := splitFrontmatter(content)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", sourcePath, err)
	}

	var front Frontmatter
	if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
		return Scene{}, fmt.Errorf("%s: parsing frontmatter: %w", sourcePath, err)
	}
	if front.Template == "" {
		return Scene{}, fmt.Errorf("%s: frontmatter is missing template", sourcePath)
	}
	if front.Props == nil {
		front.Props = map[string]interface{}{}
	}

	return Scene{
		Frontmatter: front,
		Script:      strings.TrimSpace(body),
		SourcePath:  sourcePath,
	}, nil
}

func splitFrontmatter(content string) (frontmatter, body string, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") &&
		strings.TrimSpace(normalized) != frontmatterDelimiter {
		return "", "", fmt.Errorf("scene file must start with %q frontmatter", frontmatterDelimiter)
	}

	rest := strings.TrimPrefix(normalized, frontmatterDelimiter+"\n")
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		// Allow a frontmatter-only file that closes on its last line.
		if strings.HasSuffix(strings.TrimRight(rest, "\n"), frontmatterDelimiter) {
			trimmed := strings.TrimRight(rest, "\n")
			return strings.TrimSuffix(trimmed, frontmatterDelimiter), "", nil
		}
		return "", "", fmt.Errorf("frontmatter is not closed with %q", frontmatterDelimiter)
	}

	frontmatter = rest[:end]
	body = rest[end+len("\n"+frontmatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")
	return frontmatter, body, nil
}

// LoadScenes reads every *.md file under projectDir/scenes in lexical
// filename order. Filename ordering is the scene ordering, so projects
// conventionally number files 01-intro.md, 02-feature.md and so on.
func LoadScenes(projectDir string) ([]Scene, error) {
	dir := filepath.Join(projectDir, ScenesDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenes directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no scene files found in %s", dir)
	}

	scenes := make([]Scene, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading scene file: %w", err)
		}
		sc, err := Parse(string(data), path)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, sc)
	}
	return scenes, nil
}

// ResolveAssetPath maps an asset reference to a filesystem path. The
// @assets/ prefix resolves under the project's assets directory, absolute
// paths pass through, and anything else is relative to the project root.
func ResolveAssetPath(ref, projectDir string) string {
	if after, ok := strings.CutPrefix(ref, assetPrefix); ok {
		return filepath.Join(projectDir, AssetsDirName, after)
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(projectDir, ref)
}
