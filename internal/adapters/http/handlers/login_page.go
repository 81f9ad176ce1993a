package handlers

import (
	"html/template"
)

type loginPageData struct {
	Next        string
	Failed      bool
	GoogleMode  bool
	ErrorText   string
	GoogleLogin string
}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>Login</title>
  <style>
    body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 0; padding: 48px 20px; background: #f5f7fa; color: #111827; }
    .card { max-width: 420px; margin: 0 auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 12px; padding: 20px; box-shadow: 0 2px 12px rgba(0,0,0,.06); }
    h1 { font-size: 18px; margin: 0 0 12px 0; }
    label { display: block; font-size: 13px; font-weight: 600; margin-top: 12px; }
    input { width: 100%; box-sizing: border-box; padding: 10px 12px; margin-top: 6px; border: 1px solid #d1d5db; border-radius: 8px; font-size: 14px; }
    button, .btn { display: block; box-sizing: border-box; width: 100%; margin-top: 16px; padding: 10px 12px; border-radius: 8px; border: 1px solid #2563eb; background: #2563eb; color: #fff; font-weight: 700; cursor: pointer; font-size: 14px; text-align: center; text-decoration: none; }
    .muted { margin-top: 12px; font-size: 12px; color: #6b7280; line-height: 1.4; }
    .err { background: #fee2e2; border: 1px solid #fecaca; color: #7f1d1d; padding: 10px 12px; border-radius: 10px; margin-bottom: 12px; font-size: 13px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Maintex - Secure Access</h1>
    {{if .Failed}}<div class="err">{{.ErrorText}}</div>{{end}}
    {{if .GoogleMode}}
    <a class="btn" href="{{.GoogleLogin}}">Sign in with Google</a>
    {{else}}
    <form method="post" action="/login">
      <input type="hidden" name="next" value="{{.Next}}" />
      <label>Username</label>
      <input name="username" autocomplete="username" required />
      <label>Password</label>
      <input name="password" type="password" autocomplete="current-password" required />
      <button type="submit">Sign in</button>
    </form>
    {{end}}
    <div class="muted">
      This is an internal site. If you need access, request it from management.
    </div>
  </div>
</body>
</html>
`))
