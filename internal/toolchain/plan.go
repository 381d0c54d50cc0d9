package toolchain

import (
	"context"
	"os/exec"
	"path/filepath"
)

const (
	DefaultAlignment = 4
	DefaultKeyStore  = "debug.jks"
)

// Planner prepares, but never runs, the external tool invocations behind
// each workflow step.
type Planner struct {
	Apktool   Apktool
	Apksigner Apksigner
	Zipalign  Zipalign
	KeyStore  string
}

// NewPlanner returns a planner that resolves every tool from PATH
func NewPlanner() *Planner {
	return &Planner{
		Apktool:   "apktool",
		Apksigner: "apksigner",
		Zipalign:  "zipalign",
		KeyStore:  DefaultKeyStore,
	}
}

// Decompile plans decoding apk into dir.
func (p *Planner) Decompile(ctx context.Context, apk, dir string) []*exec.Cmd {
	return []*exec.Cmd{
		p.Apktool.DecodeCmd(ctx, apk, &DecodeOpts{Force: true, OutputDirectory: dir}),
	}
}

// Recompile plans rebuilding dir, aligning the result and signing it into out.
// Intermediate archives are placed next to out.
func (p *Planner) Recompile(ctx context.Context, dir, out string) []*exec.Cmd {
	var (
		base     = filepath.Dir(out)
		unsigned = filepath.Join(base, "unsigned.apk")
		aligned  = filepath.Join(base, "aligned.apk")
	)

	return []*exec.Cmd{
		p.Apktool.BuildCmd(ctx, dir, &BuildOpts{OutputFile: unsigned}),
		// zipalign must run before apksigner
		p.Zipalign.AlignCmd(ctx, unsigned, aligned, DefaultAlignment),
		p.Apksigner.SignCmd(ctx, aligned, &SignOpts{KeyStore: p.KeyStore, OutputFile: out}),
	}
}

// Describe renders planned commands for logs and dialogs.
func Describe(cmds []*exec.Cmd) []string {
	lines := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		lines = append(lines, cmd.String())
	}
	return lines
}
