package repository

// PackageFile represents the structure of a <name>.yaml package definition.
type PackageFile struct {
	Name         string                    `yaml:"name"`
	Version      string                    `yaml:"version"`
	Homepage     string                    `yaml:"homepage"`
	Description  string                    `yaml:"description"`
	Environments map[string]EnvironmentDTO `yaml:"environments"`
}

// EnvironmentDTO represents one environment block of a package definition.
type EnvironmentDTO struct {
	Install      string   `yaml:"install"`
	Check        string   `yaml:"check"`
	Dependencies []string `yaml:"dependencies"`
}
