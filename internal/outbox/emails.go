package outbox

import (
	"fmt"
	"html"
)

// Email builders. Each returns a ready-to-store payload; callers wrap it in
// a message with NewMessage.

// InviteEmail is sent to an invited address with a link to accept
func InviteEmail(to, workspaceName, inviterName, role, acceptURL string) EmailPayload {
	subject := fmt.Sprintf("You've been invited to join %s on Zadaci", workspaceName)
	body := fmt.Sprintf(
		`<h2>Join %s</h2>
<p>%s has invited you to join the <strong>%s</strong> workspace as a %s.</p>
<p><a href="%s">Accept invitation</a></p>
<p>This invitation expires in 7 days.</p>`,
		html.EscapeString(workspaceName),
		html.EscapeString(inviterName),
		html.EscapeString(workspaceName),
		html.EscapeString(role),
		acceptURL,
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}

// WelcomeEmail is sent to a member right after they accept an invite
func WelcomeEmail(to, username, workspaceName, workspaceURL string) EmailPayload {
	subject := fmt.Sprintf("Welcome to %s", workspaceName)
	body := fmt.Sprintf(
		`<h2>Welcome aboard, %s!</h2>
<p>You are now a member of the <strong>%s</strong> workspace.</p>
<p><a href="%s">Open your workspace</a></p>`,
		html.EscapeString(username),
		html.EscapeString(workspaceName),
		workspaceURL,
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}

// DeclineEmail tells the inviter their invitation was turned down
func DeclineEmail(to, inviteeEmail, workspaceName string) EmailPayload {
	subject := fmt.Sprintf("Invitation to %s was declined", workspaceName)
	body := fmt.Sprintf(
		`<p>%s declined the invitation to join <strong>%s</strong>.</p>`,
		html.EscapeString(inviteeEmail),
		html.EscapeString(workspaceName),
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}

// ProjectAssignedEmail tells a member they were staffed onto a project
func ProjectAssignedEmail(to, username, projectTitle, workspaceName, projectURL string) EmailPayload {
	subject := fmt.Sprintf("You've been added to %s", projectTitle)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>You have been added to the project <strong>%s</strong> in %s.</p>
<p><a href="%s">View project</a></p>`,
		html.EscapeString(username),
		html.EscapeString(projectTitle),
		html.EscapeString(workspaceName),
		projectURL,
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}

// ProjectCompletedEmail tells project members the project wrapped up
func ProjectCompletedEmail(to, username, projectTitle, workspaceName string) EmailPayload {
	subject := fmt.Sprintf("%s is complete", projectTitle)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>The project <strong>%s</strong> in %s has been marked as completed. Nice work!</p>`,
		html.EscapeString(username),
		html.EscapeString(projectTitle),
		html.EscapeString(workspaceName),
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}

// TaskAssignedEmail tells a member a task now has their name on it
func TaskAssignedEmail(to, username, taskName, projectTitle, taskURL string) EmailPayload {
	subject := fmt.Sprintf("New task assigned: %s", taskName)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>You have been assigned the task <strong>%s</strong> in project %s.</p>
<p><a href="%s">View task</a></p>`,
		html.EscapeString(username),
		html.EscapeString(taskName),
		html.EscapeString(projectTitle),
		taskURL,
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}

// TaskCompletedEmail tells assignees the task is done
func TaskCompletedEmail(to, username, taskName, projectTitle string) EmailPayload {
	subject := fmt.Sprintf("Task completed: %s", taskName)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>The task <strong>%s</strong> in project %s has been completed.</p>`,
		html.EscapeString(username),
		html.EscapeString(taskName),
		html.EscapeString(projectTitle),
	)
	return EmailPayload{To: to, Subject: subject, HTML: body}
}
