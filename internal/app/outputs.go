package app

import (
	"github.com/packforge/packforge/internal/descriptor"
	"github.com/packforge/packforge/internal/devshell"
	"github.com/packforge/packforge/internal/executor"
)

// RunnableApp is the runnable-application descriptor pointing at the
// installed binary.
type RunnableApp struct {
	Name   string `json:"name"`
	Binary string `json:"binary"`
}

// Output is everything composed for one platform and exposed to the
// invoker: the named package under both its specific name and the default
// alias, the runnable app, the formatter reference, and the sibling
// development shell.
type Output struct {
	// Packages keys the build descriptor under the project name and the
	// default alias; both point at the same descriptor.
	Packages map[string]*descriptor.BuildDescriptor `json:"packages"`

	App       RunnableApp          `json:"app"`
	Formatter string               `json:"formatter,omitempty"`
	DevShell  *devshell.Descriptor `json:"devshell"`

	// Result is populated once the build executor has published; nil in
	// dry runs.
	Result *executor.Outputs `json:"result,omitempty"`
}

// newOutput composes the output surface for one assembled platform.
func newOutput(desc *descriptor.BuildDescriptor, shell *devshell.Descriptor, formatter string) *Output {
	return &Output{
		Packages: map[string]*descriptor.BuildDescriptor{
			desc.Name:  desc,
			desc.Alias: desc,
		},
		App: RunnableApp{
			Name:   desc.Name,
			Binary: desc.BinaryPath,
		},
		Formatter: formatter,
		DevShell:  shell,
	}
}
