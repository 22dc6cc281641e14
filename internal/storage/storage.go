// Package storage persists the task collection: the JSON data file that is
// saved and loaded between sessions, and a SQLite archive the collection can
// be exported into.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tasktrack/internal/debug"
	"tasktrack/internal/task"
)

// DefaultArchiveName is the export database used when the config names none.
const DefaultArchiveName = "tasks.db"

// Archive is a SQLite copy of the collection, one row per task, tag and
// subtask. Rows are keyed by position since tasks have no other identity.
type Archive struct {
	db *sql.DB
}

func OpenArchive(dbPath string) (*Archive, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Archive) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	position INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0,
	priority INTEGER NOT NULL DEFAULT 1,
	deadline TEXT NOT NULL,
	note TEXT DEFAULT '',
	exported_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS task_tags (
	task_position INTEGER NOT NULL,
	position INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (task_position, position)
);
CREATE TABLE IF NOT EXISTS subtasks (
	task_position INTEGER NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (task_position, position)
);`
	_, err := a.db.Exec(ddl)
	return err
}

// Replace overwrites the archive with tasks in a single transaction.
func (a *Archive) Replace(tasks []task.Task) (err error) {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"subtasks", "task_tags", "tasks"} {
		if _, err = tx.Exec(`DELETE FROM ` + table + `;`); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, t := range tasks {
		_, err = tx.Exec(`INSERT INTO tasks (position, title, done, priority, deadline, note, exported_at) VALUES (?, ?, ?, ?, ?, ?, ?);`,
			i, t.Title, boolToInt(t.Done), t.Priority, t.Deadline.String(), t.Note, now)
		if err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
		for k, tag := range t.Tags() {
			if _, err = tx.Exec(`INSERT INTO task_tags (task_position, position, tag) VALUES (?, ?, ?);`, i, k, tag); err != nil {
				return fmt.Errorf("insert tag %d/%d: %w", i, k, err)
			}
		}
		for k, st := range t.Subtasks() {
			if _, err = tx.Exec(`INSERT INTO subtasks (task_position, position, title, done) VALUES (?, ?, ?, ?);`,
				i, k, st.Title, boolToInt(st.Done)); err != nil {
				return fmt.Errorf("insert subtask %d/%d: %w", i, k, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	debug.Log("exported %d tasks", len(tasks))
	return nil
}

// Tasks reads the archive back into a store, in position order.
func (a *Archive) Tasks() (*task.Store, error) {
	rows, err := a.db.Query(`SELECT position, title, done, priority, deadline, note FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, err
	}
	type row struct {
		pos  int
		done bool
		d    task.Draft
	}
	var taskRows []row
	for rows.Next() {
		var r row
		var doneInt int
		var note sql.NullString
		if err := rows.Scan(&r.pos, &r.d.Title, &doneInt, &r.d.Priority, &r.d.Deadline, &note); err != nil {
			rows.Close()
			return nil, err
		}
		r.done = doneInt == 1
		r.d.Note = note.String
		taskRows = append(taskRows, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	store := task.NewStore()
	for _, r := range taskRows {
		tags, err := a.stringColumn(`SELECT tag FROM task_tags WHERE task_position = ? ORDER BY position;`, r.pos)
		if err != nil {
			return nil, err
		}
		r.d.Tags = tags
		idx, err := store.AddTask(r.d)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", r.pos, err)
		}
		if r.done {
			if err := store.ToggleDone(idx); err != nil {
				return nil, err
			}
		}
		if err := a.loadSubtasks(store, idx, r.pos); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (a *Archive) loadSubtasks(store *task.Store, idx, pos int) error {
	rows, err := a.db.Query(`SELECT title, done FROM subtasks WHERE task_position = ? ORDER BY position;`, pos)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var title string
		var doneInt int
		if err := rows.Scan(&title, &doneInt); err != nil {
			return err
		}
		k, err := store.AddSubtask(idx, title)
		if err != nil {
			return fmt.Errorf("subtask of task %d: %w", pos, err)
		}
		if doneInt == 1 {
			if err := store.ToggleSubtaskDone(idx, k); err != nil {
				return err
			}
		}
	}
	return rows.Err()
}

func (a *Archive) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
