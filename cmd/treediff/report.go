package main

import (
	"os"

	yml "gopkg.in/yaml.v3"

	"github.com/kestrel-vcs/svncore/memedit"
	"github.com/kestrel-vcs/svncore/treedelta"
)

// yamlEntry is one node in the report tree: enough to see what changed
// without dumping full file content into the document.
type yamlEntry struct {
	Name         string            `yaml:"name,omitempty"`
	Kind         string            `yaml:"kind"`
	AncestorPath string            `yaml:"ancestor_path,omitempty"`
	AncestorRev  int64             `yaml:"ancestor_rev,omitempty"`
	Props        map[string]string `yaml:"props,omitempty"`
	ContentSize  int               `yaml:"content_size,omitempty"`
	Deleted      []string          `yaml:"deleted,omitempty"`
	Children     []*yamlEntry      `yaml:"children,omitempty"`
}

func toYamlEntry(n *memedit.Node) *yamlEntry {
	e := &yamlEntry{
		Name:         n.Name,
		AncestorPath: n.AncestorPath,
		AncestorRev:  n.AncestorRev,
		Deleted:      n.Deleted,
	}
	if n.Kind == treedelta.KindDir {
		e.Kind = "dir"
	} else {
		e.Kind = "file"
		e.ContentSize = len(n.Content)
	}
	if len(n.Props) > 0 {
		e.Props = make(map[string]string, len(n.Props))
		for k, v := range n.Props {
			e.Props[k] = string(v)
		}
	}
	for _, c := range n.Children {
		e.Children = append(e.Children, toYamlEntry(c))
	}
	return e
}

// writeReport renders root as a YAML document describing the full
// materialized delta tree, the same way the teacher's report writer
// renders a revision as an indented yaml.v3 document.
func writeReport(path string, root *memedit.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ymlenc := yml.NewEncoder(f)
	ymlenc.SetIndent(2)
	defer ymlenc.Close()
	return ymlenc.Encode(toYamlEntry(root))
}
