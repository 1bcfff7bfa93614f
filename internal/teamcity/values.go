package teamcity

import (
	"fmt"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/util/naming"
)

const (
	memOptsEnv = "TEAMCITY_SERVER_MEM_OPTS"

	dataDir        = "/data/teamcity_server/datadir"
	driversDir     = "/var/drivers"
	logsDir        = "/opt/teamcity/logs"
	jdbcDownloader = "download-drivers"
	jdbcBaseURL    = "https://jdbc.postgresql.org/download"
	imageRegistry  = "docker.io"
)

// ServerValues returns the Helm values of one TeamCity server. Global
// overrides from tc.Values and then instance overrides are deep-merged over
// the built-in values.
func ServerValues(tc config.TeamCityConfig, inst config.InstanceConfig) helm.Values {
	jar := naming.JDBCDriverJar(tc.JDBCDriverVersion)
	download := fmt.Sprintf("curl -s --show-error %s/%s -o %s/%s", jdbcBaseURL, jar, driversDir, jar)

	values := helm.Values{
		"image": map[string]any{
			"repository": tc.Image.Repository,
			"tag":        inst.ImageTag,
		},
		"replicas": inst.Replicas,
		"rbac": map[string]any{
			"serviceAccount": map[string]any{"create": true},
		},
		"securityContext": map[string]any{"runAsUser": 0},
		"env": []any{
			map[string]any{"name": memOptsEnv, "value": tc.MemOpts},
		},
		"service": map[string]any{
			"type": inst.ServiceType,
			"port": inst.ServicePort,
		},
		"initContainers": []any{
			map[string]any{
				"name":    jdbcDownloader,
				"image":   tc.InitImage,
				"command": []any{"/bin/sh"},
				"args":    []any{"-c", download},
				"volumeMounts": []any{
					map[string]any{"name": "drivers", "mountPath": driversDir, "readOnly": false},
				},
			},
		},
		"resources": resources(tc.Resources),
		"volumes": []any{
			map[string]any{
				"name":   "db-config",
				"secret": map[string]any{"secretName": naming.DBPropertiesSecret, "optional": false},
			},
			map[string]any{
				"name":                  "server-data",
				"persistentVolumeClaim": map[string]any{"claimName": naming.ServerDataClaim(inst.Name)},
			},
			map[string]any{
				"name":     "drivers",
				"emptyDir": map[string]any{},
			},
			map[string]any{
				"name":                  "logs",
				"persistentVolumeClaim": map[string]any{"claimName": naming.LogsClaim(inst.Name)},
			},
		},
		"volumeMounts": []any{
			map[string]any{"name": "server-data", "mountPath": dataDir, "readOnly": false},
			map[string]any{
				"name":      "db-config",
				"mountPath": dataDir + "/config/" + naming.DBPropertiesKey,
				"subPath":   naming.DBPropertiesKey,
				"readOnly":  true,
			},
			map[string]any{"name": "drivers", "mountPath": dataDir + "/lib/jdbc", "readOnly": false},
			map[string]any{"name": "logs", "mountPath": logsDir, "readOnly": false},
		},
	}

	return helm.DeepMerge(values, tc.Values, inst.Values)
}

// PostgresValues returns the Helm values of the bitnami postgresql chart.
// The admin password is read from the admin secret, never from values.
func PostgresValues(p config.PostgresConfig) helm.Values {
	values := helm.Values{
		"image": map[string]any{
			"registry":   imageRegistry,
			"repository": p.Image.Repository,
			"tag":        p.Image.Tag,
		},
		"auth": map[string]any{
			"enablePostgresUser": true,
			"existingSecret":     naming.AdminSecret,
		},
		"architecture": "standalone",
		"primary": map[string]any{
			"resources": resources(p.Resources),
			"service": map[string]any{
				"type":  p.Service.Type,
				"ports": map[string]any{"postgresql": p.Service.Port},
			},
			"persistence": map[string]any{
				"enabled":     true,
				"accessModes": []any{"ReadWriteOnce"},
				"size":        p.Persistence,
			},
		},
	}

	return helm.DeepMerge(values, p.Values)
}

// ProxyValues returns the Helm values of the bitnami nginx chart.
func ProxyValues(px config.ProxyConfig) helm.Values {
	values := helm.Values{
		"image": map[string]any{
			"registry":   imageRegistry,
			"repository": px.Image.Repository,
			"tag":        px.Image.Tag,
		},
		"replicaCount":   1,
		"updateStrategy": map[string]any{"type": "RollingUpdate"},
		"containerPorts": map[string]any{"http": px.Port},
		"resources": map[string]any{
			"requests": map[string]any{},
			"limits":   map[string]any{},
		},
		"service": map[string]any{
			"type": px.ServiceType,
			"ports": map[string]any{
				"http":  px.Port,
				"https": px.HTTPSPort,
			},
		},
		"existingServerBlockConfigmap": naming.ProxyServerConfigMap,
	}

	return helm.DeepMerge(values, px.Values)
}

func resources(r config.ResourcesConfig) map[string]any {
	return map[string]any{
		"requests": resourceList(r.Requests),
		"limits":   resourceList(r.Limits),
	}
}

func resourceList(l config.ResourceList) map[string]any {
	out := map[string]any{}
	if l.Memory != "" {
		out["memory"] = l.Memory
	}
	if l.CPU != "" {
		out["cpu"] = l.CPU
	}
	return out
}

func chartRef(c config.ChartConfig) helm.ChartRef {
	return helm.ChartRef{
		Repository: c.Repository,
		Name:       c.Name,
		Path:       c.Path,
		Version:    c.Version,
	}
}
