// Package sysprompt assembles the system prompt for the agent: the autonomy
// mandates plus a rendering of every stored skill so the model can recall
// them without an extra lookup step.
package sysprompt

import (
	"fmt"
	"strings"

	"github.com/gptcli/gptcli/pkg/skills"
)

const mandates = `You are gpt-cli, a fully autonomous software engineering agent.
CRITICAL MANDATES:
1. NEVER ASK THE USER TO DO SOMETHING YOU CAN DO YOURSELF. If a file path is fuzzy, use run_shell_command with find or grep to locate it autonomously. Do not ask the user for the path.
2. ZERO-CLICK EXECUTION: When writing a script or fixing a bug, YOU MUST execute it yourself using run_shell_command. NEVER just show the code and ask the user to run it or modify it. Write it, run it, and present the final output.
3. ITERATIVE FIXING: If an error occurs during your tool execution (e.g., script fails, file not found), YOU MUST autonomously diagnose, fix the script or command, and re-run it until it succeeds. DO NOT stop and ask the user to fix it.
4. You have tools to read/write files, list directories, run shell commands, search the web, and create skills. Use them relentlessly to achieve the user's goal without manual intervention.`

// Build composes the system prompt from the mandates and the skill listing.
func Build(skillList []*skills.Skill) string {
	var sb strings.Builder
	sb.WriteString(mandates)
	if listing := SkillListing(skillList); listing != "" {
		sb.WriteString("\n\n")
		sb.WriteString(listing)
	}
	return sb.String()
}

// SkillListing renders stored skills as tagged blocks. Returns "" when no
// skills exist so Build can omit the section entirely.
func SkillListing(skillList []*skills.Skill) string {
	if len(skillList) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- AVAILABLE SKILLS ---\n")
	for _, skill := range skillList {
		sb.WriteString(fmt.Sprintf("\n<skill name=%q description=%q>\n%s\n</skill>\n", skill.Name, skill.Description, strings.TrimSpace(skill.Content)))
	}
	return strings.TrimSpace(sb.String())
}
