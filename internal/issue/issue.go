// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	UnsupportedHostId Id = iota + 1
	PackageManagerNotFoundId
	LockTimeoutId
	PermissionDeniedId
	AnotherInstanceRunningId
	UpdateFailedId
	HookFailedId
	ConfigLoadFailedId
	RulesLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	unsupportedHostIssue = &Issue{
		id: UnsupportedHostId,
		mdMsg: `
# Unsupported host!

We could not map this system to a supported package manager family.

## Supported families:
- **apt**: Debian, Ubuntu, and derivatives
- **dnf**: Fedora, RHEL, CentOS, and derivatives

## Things you can try:
- Check that /etc/os-release exists and has an ID or ID_LIKE field
- Verify apt-get or dnf is installed and on PATH
- Run on a Debian- or RPM-family distribution`,
	}

	packageManagerNotFoundIssue = &Issue{
		id: PackageManagerNotFoundId,
		mdMsg: `
# Package manager not found!

The host looks like a supported distribution, but its package manager
binary is missing from PATH.

## Things you can try:
- Check your PATH (updates usually need the root PATH, try 'sudo -i')
- On Debian/Ubuntu, verify:
~~~
$ command -v apt-get
~~~
- On Fedora/RHEL, verify:
~~~
$ command -v dnf
~~~`,
	}

	lockTimeoutIssue = &Issue{
		id: LockTimeoutId,
		mdMsg: `
# Package database is locked!

Another process held the package manager lock for the whole retry
window, so no changes were made.

## Common causes:
- unattended-upgrades or PackageKit running in the background
- Another apt/dnf invocation still in progress
- A stale lock left behind by a crashed package manager

## Things you can try:
- Wait for the background updater to finish and retry
- Find the holder:
~~~
$ sudo fuser -v /var/lib/dpkg/lock-frontend
~~~
- Raise the retry window in your config:
~~~cue
lock: {
  attempts:        10
  backoff_seconds: 15
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

Installing updates changes system files and needs root privileges.

## Things you can try:
- Re-run with sudo:
~~~
$ sudo upkeep run
~~~
- Use a dry run to preview without privileges:
~~~
$ upkeep run --dry-run
~~~
- Check that the log file location is writable`,
	}

	anotherInstanceRunningIssue = &Issue{
		id: AnotherInstanceRunningId,
		mdMsg: `
# Another upkeep run is already in progress!

A second concurrent run could corrupt the package database, so this
one stopped before doing anything.

## Things you can try:
- Wait for the other run to finish
- Check for a forgotten session:
~~~
$ pgrep -a upkeep
~~~
- If the previous run crashed, the lock is released automatically
  when its process exits`,
	}

	updateFailedIssue = &Issue{
		id: UpdateFailedId,
		mdMsg: `
# Update run failed!

A fatal condition stopped the update before it could complete.

## Things you can try:
- Re-run with verbose mode for more details:
~~~
$ upkeep --verbose run
~~~
- Review the run log (default /var/log/upkeep.log)
- Test the package manager directly:
~~~
$ sudo apt-get update
~~~`,
	}

	hookFailedIssue = &Issue{
		id: HookFailedId,
		mdMsg: `
# Hook script failed!

A pre_update or post_update hook from your config exited non-zero.

## Things you can try:
- Check the hook output above for the failing command
- Test the script standalone in a POSIX shell
- Hooks run in the built-in interpreter; avoid bashisms
- Remove or fix the hook in your config:
~~~cue
hooks: {
  pre_update: """
    echo "about to update"
    """
}
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the upkeep configuration file.

## Configuration file locations (in order of precedence):
1. Path given with --config
2. ~/.config/upkeep/config.cue
3. /etc/upkeep/config.cue

## Things you can try:
- Create a default configuration:
~~~
$ upkeep config init
~~~
- Check the CUE syntax of your config file
- Remove the config file to use defaults

## Example configuration:
~~~cue
components: {
  snap:    true
  flatpak: true
}

lock: {
  attempts:        5
  backoff_seconds: 5
}

ui: {
  color_scheme: "auto"
}
~~~`,
	}

	rulesLoadFailedIssue = &Issue{
		id: RulesLoadFailedId,
		mdMsg: `
# Failed to load classification rules!

A drop-in rule file under rules.d could not be parsed.

## Things you can try:
- Check the TOML syntax of the file named above
- Verify each rule has category, pattern, severity and summary
- Verify the pattern compiles as a Go regular expression

## Example rule file:
~~~toml
[[rule]]
category = "config-conflict"
pattern  = '(/[^\s]+\.pacnew)'
severity = "high"
summary  = "pacnew file needs review: %s"
~~~`,
	}

	issues = map[Id]*Issue{
		unsupportedHostIssue.Id():        unsupportedHostIssue,
		packageManagerNotFoundIssue.Id(): packageManagerNotFoundIssue,
		lockTimeoutIssue.Id():            lockTimeoutIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
		anotherInstanceRunningIssue.Id(): anotherInstanceRunningIssue,
		updateFailedIssue.Id():           updateFailedIssue,
		hookFailedIssue.Id():             hookFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		rulesLoadFailedIssue.Id():        rulesLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
