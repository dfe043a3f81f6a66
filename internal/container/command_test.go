package container

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	require.Equal(t, DefaultProgram, b.Program())
	require.Equal(t, "ContainerKit", b.AppName())

	spec := b.Command("ls", "-a", "--format", "json")
	require.Equal(t, "container", spec.Program)
	require.Equal(t, []string{"ls", "-a", "--format", "json"}, spec.Args)
	require.Equal(t, ModeDirect, spec.Mode)
	require.Empty(t, spec.SidecarPath)
	require.NoError(t, spec.Validate())
}

func TestBuilder_NoArgsIsEmptyNotNil(t *testing.T) {
	spec := NewBuilder(BuilderConfig{}).Command()
	require.NotNil(t, spec.Args)
	require.Empty(t, spec.Args)
}

func TestBuilder_ArgsAreCopied(t *testing.T) {
	args := []string{"start", "web"}
	spec := NewBuilder(BuilderConfig{}).Command(args...)
	args[1] = "db"
	require.Equal(t, []string{"start", "web"}, spec.Args)
}

func TestBuilder_Elevated(t *testing.T) {
	spec := NewBuilder(BuilderConfig{}).Elevated("s", "dns", "create", "test")
	require.Equal(t, ModeElevated, spec.Mode)
	require.Equal(t, "container", spec.Program)
}

func TestBuilder_Sidecar(t *testing.T) {
	b := NewBuilder(BuilderConfig{SidecarPath: "/Applications/Kit.app/Contents/MacOS/container"})

	direct := b.Command("ls")
	require.Equal(t, ModeDirect, direct.Mode, "sidecar is only used when preferred")

	sidecar := b.Sidecar("ls")
	require.Equal(t, ModeSidecar, sidecar.Mode)
	require.Equal(t, "/Applications/Kit.app/Contents/MacOS/container", sidecar.SidecarPath)
}

func TestBuilder_PreferSidecar(t *testing.T) {
	b := NewBuilder(BuilderConfig{SidecarPath: "/opt/kit/container", PreferSidecar: true})
	require.Equal(t, ModeSidecar, b.Command("ls").Mode)

	elevated := b.Elevated("s", "dns", "create", "x")
	require.Equal(t, ModeElevated, elevated.Mode)
	require.Equal(t, "/opt/kit/container", elevated.SidecarPath)
}

func TestBuilder_PreferSidecarWithoutPathFallsBack(t *testing.T) {
	b := NewBuilder(BuilderConfig{PreferSidecar: true})
	require.Equal(t, ModeDirect, b.Command("ls").Mode)
}

func TestCommandSpec_Validate(t *testing.T) {
	require.ErrorIs(t, CommandSpec{}.Validate(), ErrEmptyProgram)
	require.ErrorIs(t, CommandSpec{Program: "container", Mode: ModeSidecar}.Validate(), ErrNoSidecar)
}

func TestCommandSpec_WithStdinDoesNotAlias(t *testing.T) {
	spec := NewBuilder(BuilderConfig{}).Command("registry", "login")
	withSecret := spec.WithStdin("hunter2")
	withSecret.Args[0] = "changed"

	require.Equal(t, "registry", spec.Args[0])
	require.Empty(t, spec.Stdin)
	require.Equal(t, "hunter2", withSecret.Stdin)
}

func TestResolveArgv_Direct(t *testing.T) {
	name, args, err := resolveArgv(CommandSpec{Program: "container", Args: []string{"ls"}}, host{goos: "darwin", euid: 501})
	require.NoError(t, err)
	require.Equal(t, "container", name)
	require.Equal(t, []string{"ls"}, args)
}

func TestResolveArgv_Sidecar(t *testing.T) {
	spec := CommandSpec{Program: "container", Args: []string{"ls"}, SidecarPath: "/opt/kit/container", Mode: ModeSidecar}
	name, args, err := resolveArgv(spec, host{goos: "darwin", euid: 501})
	require.NoError(t, err)
	require.Equal(t, "/opt/kit/container", name)
	require.Equal(t, []string{"ls"}, args)
}

func TestResolveArgv_ElevatedAsRootRunsDirectly(t *testing.T) {
	spec := CommandSpec{Program: "container", Args: []string{"s", "dns", "create", "test"}, Mode: ModeElevated}
	name, args, err := resolveArgv(spec, host{goos: "darwin", euid: 0})
	require.NoError(t, err)
	require.Equal(t, "container", name)
	require.Equal(t, spec.Args, args)
}

func TestResolveArgv_ElevatedDarwinUsesOsascript(t *testing.T) {
	spec := CommandSpec{Program: "container", Args: []string{"s", "dns", "create", "my domain"}, Mode: ModeElevated}
	name, args, err := resolveArgv(spec, host{goos: "darwin", euid: 501, appName: "ContainerKit"})
	require.NoError(t, err)
	require.Equal(t, "osascript", name)
	require.Len(t, args, 2)
	require.Equal(t, "-e", args[0])
	require.True(t, strings.HasPrefix(args[1], `do shell script "container s dns create 'my domain'"`), args[1])
	require.Contains(t, args[1], "with administrator privileges")
	require.Contains(t, args[1], `with prompt "ContainerKit needs administrator access to run container."`)
}

func TestResolveArgv_ElevatedElsewhereUsesSudo(t *testing.T) {
	spec := CommandSpec{Program: "container", Args: []string{"s", "dns", "create", "test"}, Mode: ModeElevated}
	name, args, err := resolveArgv(spec, host{goos: "linux", euid: 1000})
	require.NoError(t, err)
	require.Equal(t, "sudo", name)
	require.Equal(t, []string{"--", "container", "s", "dns", "create", "test"}, args)
}

func TestResolveArgv_InvalidSpec(t *testing.T) {
	_, _, err := resolveArgv(CommandSpec{}, host{})
	require.ErrorIs(t, err, ErrEmptyProgram)
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"docker.io", "docker.io"},
		{"", "''"},
		{"two words", "'two words'"},
		{"it's", `'it'\''s'`},
		{"$(rm -rf /)", "'$(rm -rf /)'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, shellQuote(tt.in))
		})
	}
}

func TestAppleScriptString(t *testing.T) {
	require.Equal(t, `"say \"hi\" \\ bye"`, appleScriptString(`say "hi" \ bye`))
}

func TestMode_String(t *testing.T) {
	require.Equal(t, "direct", ModeDirect.String())
	require.Equal(t, "elevated", ModeElevated.String())
	require.Equal(t, "sidecar", ModeSidecar.String())
	require.Equal(t, "unknown", Mode(42).String())
}
