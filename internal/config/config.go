package config

import (
	"errors"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDataFile       = "tasks.json"
	DefaultExportDB       = "tasks.db"

	// ConfigEnvVar overrides the config file location.
	ConfigEnvVar = "TASKTRACK_CONFIG"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Delete        string `toml:"delete"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Toggle        string `toml:"toggle"`
	EnterSubtasks string `toml:"enter_subtasks"`
	ExitSubtasks  string `toml:"exit_subtasks"`
	EditTitle     string `toml:"edit_title"`
	EditNote      string `toml:"edit_note"`
	EditDeadline  string `toml:"edit_deadline"`
	ManageTags    string `toml:"manage_tags"`
	Sort          string `toml:"sort"`
	Save          string `toml:"save"`
	Load          string `toml:"load"`
	Search        string `toml:"search"`
	Export        string `toml:"export"`
	Copy          string `toml:"copy"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
}

type Config struct {
	DataFile string `toml:"data_file"`
	ExportDB string `toml:"export_db"`
	Keys     Keymap `toml:"keys"`
}

// ResolveConfigPath returns TASKTRACK_CONFIG or config.toml in the working
// directory.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}
	return DefaultConfigFileName
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// fillDefaults restores fields a hand-edited file left empty.
func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DataFile == "" {
		c.DataFile = def.DataFile
	}
	if c.ExportDB == "" {
		c.ExportDB = def.ExportDB
	}
	keys := []struct {
		dst *string
		def string
	}{
		{&c.Keys.Quit, def.Keys.Quit},
		{&c.Keys.Add, def.Keys.Add},
		{&c.Keys.Delete, def.Keys.Delete},
		{&c.Keys.Up, def.Keys.Up},
		{&c.Keys.Down, def.Keys.Down},
		{&c.Keys.Toggle, def.Keys.Toggle},
		{&c.Keys.EnterSubtasks, def.Keys.EnterSubtasks},
		{&c.Keys.ExitSubtasks, def.Keys.ExitSubtasks},
		{&c.Keys.EditTitle, def.Keys.EditTitle},
		{&c.Keys.EditNote, def.Keys.EditNote},
		{&c.Keys.EditDeadline, def.Keys.EditDeadline},
		{&c.Keys.ManageTags, def.Keys.ManageTags},
		{&c.Keys.Sort, def.Keys.Sort},
		{&c.Keys.Save, def.Keys.Save},
		{&c.Keys.Load, def.Keys.Load},
		{&c.Keys.Search, def.Keys.Search},
		{&c.Keys.Export, def.Keys.Export},
		{&c.Keys.Copy, def.Keys.Copy},
		{&c.Keys.Confirm, def.Keys.Confirm},
		{&c.Keys.Cancel, def.Keys.Cancel},
	}
	for _, k := range keys {
		if *k.dst == "" {
			*k.dst = k.def
		}
	}
}

func defaultConfig() Config {
	return Config{
		DataFile: DefaultDataFile,
		ExportDB: DefaultExportDB,
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Delete:        "d",
			Up:            "k",
			Down:          "j",
			Toggle:        " ",
			EnterSubtasks: "l",
			ExitSubtasks:  "h",
			EditTitle:     "e",
			EditNote:      "r",
			EditDeadline:  "n",
			ManageTags:    "c",
			Sort:          "s",
			Save:          "w",
			Load:          "x",
			Search:        "/",
			Export:        "X",
			Copy:          "y",
			Confirm:       "enter",
			Cancel:        "esc",
		},
	}
}

// Default returns the configuration written on first launch.
func Default() Config {
	return defaultConfig()
}
