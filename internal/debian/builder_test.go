package debian_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/debrepack/internal/archive"
	"github.com/ralt/debrepack/internal/debian"
	"github.com/ralt/debrepack/internal/debian/debtest"
	"github.com/ralt/debrepack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records commands and drops a package into the target dir
type fakeRunner struct {
	targetDir string
	fileName  string
	control   string
	err       error
	commands  []debian.Command
}

func (r *fakeRunner) Run(_ context.Context, cmd debian.Command) error {
	r.commands = append(r.commands, cmd)
	if r.err != nil {
		return r.err
	}
	if r.fileName == "" {
		return nil
	}
	return debtest.WriteDeb(filepath.Join(r.targetDir, r.fileName), r.control, archive.CompressionXz)
}

type fakeSigner struct {
	signed  []string
	signErr error
	keyErr  error
}

func (s *fakeSigner) SignFile(path string) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.signed = append(s.signed, path)
	return path + ".asc", os.WriteFile(path+".asc", []byte("sig"), 0644)
}

func (s *fakeSigner) GetPublicKey() ([]byte, error) {
	if s.keyErr != nil {
		return nil, s.keyErr
	}
	return []byte("key"), nil
}

func amd64(t *testing.T) debian.Arch {
	t.Helper()
	arch, err := debian.LookupArch("x86_64")
	require.NoError(t, err)
	return arch
}

var buildVars = models.BuildVariables{
	models.VarPkgName:    "firefox",
	models.VarPkgVersion: "121.0~build1",
	models.VarArchName:   "amd64",
}

func newBuild(t *testing.T) (targetDir, sourceDir, output string) {
	targetDir = t.TempDir()
	sourceDir = filepath.Join(targetDir, debian.SourceDirName)
	require.NoError(t, os.Mkdir(sourceDir, 0755))
	output = filepath.Join(t.TempDir(), "out", "target.deb")
	return
}

func TestBuild(t *testing.T) {
	targetDir, sourceDir, output := newBuild(t)
	runner := &fakeRunner{
		targetDir: targetDir,
		fileName:  "firefox_121.0~build1_amd64.deb",
		control:   debtest.Control("firefox", "121.0~build1", "amd64"),
	}
	signer := &fakeSigner{}
	b := &debian.Builder{Runner: runner, Signer: signer, ChrootRoot: t.TempDir()}

	require.NoError(t, b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t)))

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "dpkg-buildpackage", cmd.Name)
	assert.Equal(t, []string{"-us", "-uc", "-b"}, cmd.Args)
	assert.Equal(t, sourceDir, cmd.Dir)
	assert.Equal(t, []string{"DEB_TARGET_ARCH=amd64", "DEB_SYSROOT_ARCH=amd64", "DEB_SYSROOT_DIST=jessie"}, cmd.Env)

	artifact := filepath.Join(targetDir, runner.fileName)
	assert.FileExists(t, output)
	assert.NoFileExists(t, artifact)
	assert.Equal(t, []string{artifact}, signer.signed)
	assert.FileExists(t, output+".asc")
	assert.NoFileExists(t, artifact+".asc")
	assert.NoFileExists(t, output+".pub.asc")
}

func newSignedBuild(t *testing.T, s *fakeSigner, exportKey bool) (*debian.Builder, string, string, string) {
	targetDir, sourceDir, output := newBuild(t)
	runner := &fakeRunner{
		targetDir: targetDir,
		fileName:  "firefox_121.0~build1_amd64.deb",
		control:   debtest.Control("firefox", "121.0~build1", "amd64"),
	}
	return &debian.Builder{Runner: runner, Signer: s, ExportKey: exportKey}, targetDir, sourceDir, output
}

func TestBuildExportsPublicKey(t *testing.T) {
	b, targetDir, sourceDir, output := newSignedBuild(t, &fakeSigner{}, true)

	require.NoError(t, b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t)))

	assert.FileExists(t, output)
	assert.FileExists(t, output+".asc")
	key, err := os.ReadFile(output + ".pub.asc")
	require.NoError(t, err)
	assert.Equal(t, "key", string(key))
}

func TestBuildSigningFailureLeavesNoOutput(t *testing.T) {
	for name, s := range map[string]*fakeSigner{
		"signature":  {signErr: errors.New("bad key")},
		"public key": {keyErr: errors.New("bad key")},
	} {
		t.Run(name, func(t *testing.T) {
			b, targetDir, sourceDir, output := newSignedBuild(t, s, true)

			err := b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t))

			var repackErr *models.RepackError
			require.ErrorAs(t, err, &repackErr)
			assert.Equal(t, models.ErrSigning, repackErr.Type)
			assert.NoFileExists(t, output)
			assert.NoFileExists(t, output+".asc")
			assert.NoFileExists(t, output+".pub.asc")
		})
	}
}

func TestBuildNoPackageFound(t *testing.T) {
	targetDir, sourceDir, output := newBuild(t)
	b := &debian.Builder{Runner: &fakeRunner{targetDir: targetDir}}

	err := b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t))

	var notFound *debian.NoPackageFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, filepath.Join(targetDir, "firefox_121.0~build1_amd64.deb"), notFound.Path)
	assert.NoFileExists(t, output)
}

func TestBuildRejectsMismatchingPackage(t *testing.T) {
	targetDir, sourceDir, output := newBuild(t)
	runner := &fakeRunner{
		targetDir: targetDir,
		fileName:  "firefox_121.0~build1_amd64.deb",
		control:   debtest.Control("firefox", "121.0~build2", "amd64"),
	}
	b := &debian.Builder{Runner: runner}

	err := b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t))

	var repackErr *models.RepackError
	require.ErrorAs(t, err, &repackErr)
	assert.Equal(t, models.ErrPackaging, repackErr.Type)
	assert.NoFileExists(t, output)
}

func TestBuildToolFailure(t *testing.T) {
	targetDir, sourceDir, output := newBuild(t)
	toolErr := errors.New("exit status 2")
	b := &debian.Builder{Runner: &fakeRunner{targetDir: targetDir, err: toolErr}}

	err := b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t))
	assert.ErrorIs(t, err, toolErr)
}

func TestBuildCommand(t *testing.T) {
	x86, err := debian.LookupArch("x86")
	require.NoError(t, err)

	cmd := debian.BuildCommand(x86, "", "/tmp/abc/source")
	assert.Equal(t, "dpkg-buildpackage -us -uc -b --host-arch=i386", cmd.String())
	assert.Contains(t, cmd.Env, "DEB_SYSROOT_ARCH=i386")

	cmd = debian.BuildCommand(x86, "/srv/jessie-i386", "/srv/jessie-i386/tmp/abc/source")
	assert.Equal(t, "chroot", cmd.Name)
	assert.Equal(t, []string{
		"/srv/jessie-i386", "bash", "-c",
		"cd /tmp/*/source; dpkg-buildpackage -us -uc -b --host-arch=i386",
	}, cmd.Args)
}

func TestTempDirInsideChroot(t *testing.T) {
	root := t.TempDir()
	arch := amd64(t)
	b := &debian.Builder{ChrootRoot: root}

	dir, err := b.TempDir(arch)
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	assert.NotContains(t, dir, root)

	chroot := arch.ChrootIn(root)
	require.NoError(t, os.MkdirAll(filepath.Join(chroot, "tmp"), 0755))
	assert.Equal(t, chroot, b.Chroot(arch))

	dir, err = b.TempDir(arch)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(chroot, "tmp"), filepath.Dir(dir))
}

func TestPackageFileName(t *testing.T) {
	assert.Equal(t, "firefox_121.0~build1_amd64.deb", debian.PackageFileName(buildVars))
}

func TestBuildPublishFailureRemovesPackage(t *testing.T) {
	b, targetDir, sourceDir, output := newSignedBuild(t, &fakeSigner{}, false)
	// A directory in the way of the signature makes its move fail
	require.NoError(t, os.MkdirAll(output+".asc", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(output+".asc", "keep"), nil, 0644))

	err := b.Build(context.Background(), sourceDir, targetDir, output, buildVars, amd64(t))

	var repackErr *models.RepackError
	require.ErrorAs(t, err, &repackErr)
	assert.Equal(t, models.ErrFileOp, repackErr.Type)
	assert.NoFileExists(t, output)
}
