package cmdutil

import (
	"fmt"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/session"
	"github.com/opgrid/alarmlens/internal/pkg/translate"
)

// OwnerNodeName is the node the filter logic is attached to in the host
// tree. It is reserved alongside the configuration subtree.
const OwnerNodeName = "AlarmFilterLogic"

// OpenSession loads the model tree and builds a session over it. The
// returned root must be saved back with SaveModels to persist edits.
func OpenSession(modelsPath, translationsPath string) (*session.Session, *nodetree.Node, error) {
	root, err := LoadModels(modelsPath)
	if err != nil {
		return nil, nil, err
	}
	table, err := LoadTranslations(translationsPath)
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.New(session.Config{
		Parent:    root,
		OwnerName: OwnerNodeName,
		Catalog:   catalog.New(table),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open filter session: %w", err)
	}
	return sess, root, nil
}

// LoadTranslations loads a translation table, or the built-in defaults when
// no path is configured.
func LoadTranslations(path string) (*translate.Table, error) {
	if path == "" {
		return translate.NewTable(nil), nil
	}
	return translate.LoadTable(path)
}
