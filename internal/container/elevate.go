package container

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// host captures the facts about the running process that decide how an
// elevated command is launched.
type host struct {
	goos    string
	euid    int
	appName string
}

func currentHost(appName string) host {
	return host{goos: runtime.GOOS, euid: os.Geteuid(), appName: appName}
}

// resolveArgv turns a spec into the executable and argument list handed to
// exec. Elevation already granted (root) collapses to a plain invocation.
func resolveArgv(spec CommandSpec, h host) (string, []string, error) {
	if err := spec.Validate(); err != nil {
		return "", nil, err
	}

	exe := spec.Program
	if spec.SidecarPath != "" && spec.Mode != ModeDirect {
		exe = spec.SidecarPath
	}

	if spec.Mode != ModeElevated || h.euid == 0 {
		return exe, spec.Args, nil
	}

	switch h.goos {
	case "darwin":
		cmdline := shellJoin(append([]string{exe}, spec.Args...))
		prompt := fmt.Sprintf("%s needs administrator access to run %s.", h.appName, spec.Program)
		script := fmt.Sprintf("do shell script %s with administrator privileges with prompt %s",
			appleScriptString(cmdline), appleScriptString(prompt))
		return "osascript", []string{"-e", script}, nil
	default:
		return "sudo", append([]string{"--", exe}, spec.Args...), nil
	}
}

// shellJoin quotes each word for /bin/sh.
func shellJoin(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = shellQuote(w)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:@,+%", r)
}

// appleScriptString renders s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
