package manifest

import "github.com/hashicorp/hcl/v2"

// projectBlock is the `project` block of a manifest file.
type projectBlock struct {
	Name    string   `hcl:"name"`
	Alias   string   `hcl:"alias,optional"`
	Version string   `hcl:"version"`
	Source  string   `hcl:"source,optional"`
	Exclude []string `hcl:"exclude,optional"`
}

// toolchainBlock pins the compiler toolchain used for every platform.
type toolchainBlock struct {
	Channel string `hcl:"channel"`
}

// packagesBlock lists the system packages a build pulls from the package
// set. `darwin` entries are appended to `build` only for Darwin-like
// targets.
type packagesBlock struct {
	Build  []string `hcl:"build,optional"`
	Link   []string `hcl:"link,optional"`
	Darwin []string `hcl:"darwin,optional"`
}

// dependencyBlock is one live declaration of the pinned dependency graph,
// verified against the lock file before anything is built.
type dependencyBlock struct {
	Name    string `hcl:"name,label"`
	Version string `hcl:"version"`
}

// devshellBlock describes the interactive toolchain shell output.
type devshellBlock struct {
	Tools []string `hcl:"tools,optional"`
}

// fileRoot decodes all top-level blocks a manifest file may carry. Blocks
// from multiple files are merged by the loader.
type fileRoot struct {
	Project      *projectBlock      `hcl:"project,block"`
	Toolchain    *toolchainBlock    `hcl:"toolchain,block"`
	Packages     *packagesBlock     `hcl:"packages,block"`
	Dependencies []*dependencyBlock `hcl:"dependency,block"`
	DevShell     *devshellBlock     `hcl:"devshell,block"`
	Features     []string           `hcl:"features,optional"`
	Formatter    string             `hcl:"formatter,optional"`
	Env          hcl.Expression     `hcl:"env,optional"`
	Remain       hcl.Body           `hcl:",remain"`
}
