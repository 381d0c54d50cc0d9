// Package toolchain builds the command lines a real APK editor would run.
// Nothing in this package starts a process.
package toolchain

import (
	"context"
	"os/exec"
)

// Apktool represents the path to an `apktool` executable.
type Apktool string

func (c Apktool) String() string {
	return string(c)
}

// DecodeOpts represent flags that can be passed to `apktool d`.
type DecodeOpts struct {
	Force           bool
	NoResources     bool
	NoSources       bool
	OutputDirectory string
}

// DecodeCmd prepares `apktool d` against the .apk at name with flags
// derived from the given DecodeOpts.
func (c Apktool) DecodeCmd(ctx context.Context, name string, opts *DecodeOpts) *exec.Cmd {
	args := []string{"d", name}

	if opts != nil {
		if opts.Force {
			args = append(args, "--force")
		}

		if opts.NoResources {
			args = append(args, "--no-res")
		}

		if opts.NoSources {
			args = append(args, "--no-src")
		}

		if opts.OutputDirectory != "" {
			args = append(args, "-o", opts.OutputDirectory)
		}
	}

	//nolint:gosec
	return exec.CommandContext(ctx, c.String(), args...)
}

// BuildOpts represent flags that can be passed to `apktool b`.
type BuildOpts struct {
	OutputFile string
}

// BuildCmd prepares `apktool b` against the decoded project at dir.
func (c Apktool) BuildCmd(ctx context.Context, dir string, opts *BuildOpts) *exec.Cmd {
	args := []string{"b", dir}

	if opts != nil && opts.OutputFile != "" {
		args = append(args, "-o", opts.OutputFile)
	}

	//nolint:gosec
	return exec.CommandContext(ctx, c.String(), args...)
}
