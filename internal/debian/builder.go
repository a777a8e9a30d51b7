package debian

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ralt/debrepack/internal/models"
	"github.com/ralt/debrepack/internal/signer"
	"github.com/ralt/debrepack/internal/utils"
	"github.com/sirupsen/logrus"
)

// BuildTool is the Debian packaging tool the builder invokes
const BuildTool = "dpkg-buildpackage"

// SourceDirName is the directory of the temp dir holding the assembled source tree
const SourceDirName = "source"

// NoPackageFoundError is returned when the packaging tool succeeded without
// producing the expected artifact
type NoPackageFoundError struct {
	Path string
}

func (e *NoPackageFoundError) Error() string {
	return fmt.Sprintf("no package found at %s", e.Path)
}

// Command is one process invocation
type Command struct {
	Dir  string
	Env  []string
	Name string
	Args []string
}

// String returns the command line
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes, streaming their output to the log
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, c Command) error {
	stdout := logrus.StandardLogger().WriterLevel(logrus.InfoLevel)
	defer stdout.Close()
	stderr := logrus.StandardLogger().WriterLevel(logrus.WarnLevel)
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Builder turns an assembled source tree into a .deb
type Builder struct {
	Runner Runner
	// Signer is optional and signs the artifact before it is published
	Signer signer.Signer
	// ExportKey publishes the signer's public key next to the package
	ExportKey bool
	// ChrootRoot is searched for a sysroot matching the architecture
	ChrootRoot string
}

// NewBuilder creates a builder running the packaging tool on this host, or
// in a sysroot below ChrootRoot when one matches
func NewBuilder() *Builder {
	return &Builder{
		Runner:     ExecRunner{},
		ChrootRoot: ChrootRoot,
	}
}

// Chroot returns the sysroot to build arch in, or "" when none is installed
func (b *Builder) Chroot(arch Arch) string {
	if b.ChrootRoot == "" {
		return ""
	}
	path := arch.ChrootIn(b.ChrootRoot)
	if !utils.DirExists(path) {
		return ""
	}
	return path
}

// TempDir creates the working directory of a run. With a sysroot for arch,
// it lives in the sysroot's /tmp so that the chrooted tool sees the tree.
func (b *Builder) TempDir(arch Arch) (string, error) {
	parent := ""
	if chroot := b.Chroot(arch); chroot != "" {
		parent = filepath.Join(chroot, "tmp")
	}
	dir, err := os.MkdirTemp(parent, "debrepack-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	return dir, nil
}

// BuildCommand returns the packaging tool invocation for arch. A non-empty
// chroot wraps it in a chroot running from the source tree in /tmp.
func BuildCommand(arch Arch, chroot, sourceDir string) Command {
	args := []string{"-us", "-uc", "-b"}
	if arch.DebArch == "i386" {
		args = append(args, "--host-arch=i386")
	}

	cmd := Command{
		Dir:  sourceDir,
		Name: BuildTool,
		Args: args,
		Env: []string{
			"DEB_TARGET_ARCH=" + arch.DebArch,
			"DEB_SYSROOT_ARCH=" + arch.SysrootArch,
			"DEB_SYSROOT_DIST=" + arch.SysrootDist,
		},
	}
	if chroot == "" {
		return cmd
	}

	inner := cmd.String()
	cmd.Name = "chroot"
	cmd.Args = []string{chroot, "bash", "-c", fmt.Sprintf("cd /tmp/*/%s; %s", SourceDirName, inner)}
	return cmd
}

// PackageFileName returns the file name the packaging tool gives the artifact
func PackageFileName(vars models.BuildVariables) string {
	return fmt.Sprintf("%s_%s_%s.deb", vars.PkgName(), vars.PkgVersion(), vars.ArchName())
}

// Build runs the packaging tool in sourceDir, checks and signs the artifact
// it leaves in targetDir, then publishes it to output. Either the package and
// its signature files all reach output, or none of them do.
func (b *Builder) Build(ctx context.Context, sourceDir, targetDir, output string, vars models.BuildVariables, arch Arch) error {
	cmd := BuildCommand(arch, b.Chroot(arch), sourceDir)
	logrus.Infof("Running %s", cmd)
	logrus.Debugf("Build environment: %v", cmd.Env)

	if err := b.Runner.Run(ctx, cmd); err != nil {
		return models.Wrap(models.ErrPackaging, sourceDir, fmt.Errorf("%s failed: %w", BuildTool, err))
	}

	artifact := filepath.Join(targetDir, PackageFileName(vars))
	if !utils.FileExists(artifact) {
		return models.Wrap(models.ErrPackaging, "", &NoPackageFoundError{Path: artifact})
	}

	control, err := Inspect(artifact)
	if err != nil {
		return models.Wrap(models.ErrPackaging, artifact, err)
	}
	if err := control.Verify(vars.PkgName(), vars.PkgVersion(), vars.ArchName()); err != nil {
		return models.Wrap(models.ErrPackaging, artifact, err)
	}

	digest, err := utils.FileDigest(artifact)
	if err != nil {
		return models.Wrap(models.ErrFileOp, artifact, fmt.Errorf("failed to hash package: %w", err))
	}

	files, err := b.sign(artifact, output)
	if err != nil {
		return models.Wrap(models.ErrSigning, artifact, err)
	}

	if err := utils.EnsureDir(filepath.Dir(output)); err != nil {
		return models.Wrap(models.ErrFileOp, output, err)
	}
	if err := publish(files); err != nil {
		return models.Wrap(models.ErrFileOp, output, fmt.Errorf("failed to move package: %w", err))
	}
	logrus.Infof("Wrote %s (%d bytes, sha256 %s)", output, digest.Size, digest.SHA256)
	for _, f := range files[1:] {
		logrus.Infof("Wrote %s", f.dst)
	}
	return nil
}

// staged is a file in the temp dir waiting to be moved to its destination
type staged struct {
	src, dst string
}

// sign stages the artifact with its signature and, when requested, the
// public key verifying it
func (b *Builder) sign(artifact, output string) ([]staged, error) {
	files := []staged{{src: artifact, dst: output}}
	if b.Signer == nil {
		return files, nil
	}

	sigPath, err := b.Signer.SignFile(artifact)
	if err != nil {
		return nil, err
	}
	files = append(files, staged{src: sigPath, dst: output + signer.SignatureSuffix})

	if b.ExportKey {
		key, err := b.Signer.GetPublicKey()
		if err != nil {
			return nil, fmt.Errorf("failed to export public key: %w", err)
		}
		keyPath := artifact + signer.PublicKeySuffix
		if err := utils.WriteFile(keyPath, key, 0644); err != nil {
			return nil, err
		}
		files = append(files, staged{src: keyPath, dst: output + signer.PublicKeySuffix})
	}
	return files, nil
}

// publish moves every staged file, removing the ones already moved when one fails
func publish(files []staged) error {
	for i, f := range files {
		if err := utils.MoveFile(f.src, f.dst); err != nil {
			for _, done := range files[:i] {
				os.Remove(done.dst)
			}
			return err
		}
	}
	return nil
}
