package toolchain

import (
	"context"
	"os/exec"
	"strconv"
)

// Apksigner represents the path to an `apksigner` executable.
type Apksigner string

func (c Apksigner) String() string {
	return string(c)
}

// SignOpts represent flags that can be passed to `apksigner sign`.
type SignOpts struct {
	KeyStore   string
	OutputFile string
}

// SignCmd prepares `apksigner sign` for the .apk at name.
func (c Apksigner) SignCmd(ctx context.Context, name string, opts *SignOpts) *exec.Cmd {
	args := []string{"sign"}

	if opts != nil {
		if opts.KeyStore != "" {
			args = append(args, "--ks", opts.KeyStore)
		}

		if opts.OutputFile != "" {
			args = append(args, "--out", opts.OutputFile)
		}
	}

	args = append(args, name)

	//nolint:gosec
	return exec.CommandContext(ctx, c.String(), args...)
}

// Zipalign represents the path to a `zipalign` executable.
type Zipalign string

func (c Zipalign) String() string {
	return string(c)
}

// AlignCmd prepares `zipalign -v <alignment> in out`.
func (c Zipalign) AlignCmd(ctx context.Context, in, out string, alignment int) *exec.Cmd {
	if alignment <= 0 {
		alignment = DefaultAlignment
	}

	//nolint:gosec
	return exec.CommandContext(ctx, c.String(), "-v", strconv.Itoa(alignment), in, out)
}
