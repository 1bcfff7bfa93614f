package teamcity

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Upstream is one TeamCity server behind the proxy.
type Upstream struct {
	Name string
	Host string
	Port int
}

const serverBlockTemplate = `server {
  listen {{ .Port | default 8000 }} default_server;
  listen [::]:{{ .Port | default 8000 }} default_server;
  location /health {
      return 200;
  }
{{- range .Upstreams }}
  location /{{ .Name | lower }}/ {
      proxy_pass http://{{ .Host }}:{{ .Port }}/;
      proxy_set_header Host $host;
      proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
      proxy_set_header X-Forwarded-Prefix /{{ .Name | lower }};
  }
{{- end }}
}`

var serverBlock = template.Must(template.New("server-block").Funcs(sprig.TxtFuncMap()).Parse(serverBlockTemplate))

// RenderServerBlock renders the Nginx server block that routes /<name>/ to
// each upstream. Upstreams are emitted sorted by name.
func RenderServerBlock(port int, upstreams []Upstream) (string, error) {
	sorted := append([]Upstream(nil), upstreams...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	err := serverBlock.Execute(&buf, struct {
		Port      int
		Upstreams []Upstream
	}{Port: port, Upstreams: sorted})
	if err != nil {
		return "", fmt.Errorf("failed to render server block: %w", err)
	}
	return buf.String(), nil
}
