package scene

import (
	"database/sql"
	"fmt"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

// SaveSQLite writes the registry to a SQLite document at dbPath. The whole
// tree goes in one transaction with prepared statements; ordinal preserves
// sibling order so a load reconstructs identical child sequences.
func SaveSQLite(reg *Registry, dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	// Bulk-insert tuning
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		return err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		parent_id TEXT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		x REAL, y REAL, w REAL, h REAL,
		plugin TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, ordinal);
	DELETE FROM nodes;
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op if committed

	stmt, err := tx.Prepare(`INSERT INTO nodes
		(id, parent_id, name, type, ordinal, x, y, w, h, plugin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() // safe to ignore

	insert := func(n *Node, ordinal int) error {
		var plugin string
		if len(n.Plugin) > 0 {
			b, err := oj.Marshal(n.Plugin)
			if err != nil {
				return fmt.Errorf("marshal plugin for %s: %w", n.ID, err)
			}
			plugin = string(b)
		}
		_, err := stmt.Exec(n.ID, n.ParentID, n.Name, n.Type.String(), ordinal,
			n.Bounds.X, n.Bounds.Y, n.Bounds.W, n.Bounds.H, plugin)
		return err
	}

	for pi, page := range reg.Pages() {
		if err := insert(page, pi); err != nil {
			return fmt.Errorf("insert page %s: %w", page.ID, err)
		}
		// Pre-order over the page with an explicit stack, tracking each
		// node's position within its parent.
		type item struct {
			id      string
			ordinal int
		}
		var stack []item
		for i := len(page.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{page.Children[i], i})
		}
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := reg.Lookup(it.id)
			if n == nil {
				continue
			}
			if err := insert(n, it.ordinal); err != nil {
				return fmt.Errorf("insert node %s: %w", n.ID, err)
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{n.Children[i], i})
			}
		}
	}

	return tx.Commit()
}

// LoadSQLite reads a SQLite document into a fresh Registry.
func LoadSQLite(dbPath string) (*Registry, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query(`SELECT id, parent_id, name, type, ordinal,
		x, y, w, h, plugin FROM nodes ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	type row struct {
		node    *Node
		ordinal int
	}
	var all []row
	for rows.Next() {
		var (
			id, parentID, name, typ, plugin string
			ordinal                         int
			x, y, w, h                      float64
		)
		if err := rows.Scan(&id, &parentID, &name, &typ, &ordinal,
			&x, &y, &w, &h, &plugin); err != nil {
			return nil, fmt.Errorf("scan node row: %w", err)
		}
		n := &Node{
			ID:       id,
			Name:     name,
			Type:     ParseNodeType(typ),
			ParentID: parentID,
			Bounds:   Rect{X: x, Y: y, W: w, H: h},
		}
		if plugin != "" {
			var m map[string]string
			// A malformed plugin column means "no metadata", not a load failure.
			if err := oj.Unmarshal([]byte(plugin), &m); err == nil {
				n.Plugin = m
			}
		}
		all = append(all, row{node: n, ordinal: ordinal})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate node rows: %w", err)
	}

	// Rebuild child lists from parent_id + ordinal. Rows are already
	// ordinal-sorted, so appends land in sibling order.
	reg := NewRegistry()
	byID := make(map[string]*Node, len(all))
	for _, r := range all {
		byID[r.node.ID] = r.node
	}
	for _, r := range all {
		if r.node.ParentID != "" {
			if p, ok := byID[r.node.ParentID]; ok {
				p.Children = append(p.Children, r.node.ID)
			}
		}
	}
	// Insert everything before indexing: row order is ordinal-sorted, not
	// topological, so a child can precede its parent and page membership
	// can only be resolved once the whole arena is populated.
	for _, r := range all {
		if r.node.Type == TypePage && r.node.ParentID == "" {
			reg.AddPage(r.node)
		} else {
			reg.nodes[r.node.ID] = r.node
		}
	}
	for _, r := range all {
		if r.node.Type != TypePage {
			reg.indexNode(r.node)
		}
	}
	return reg, nil
}
