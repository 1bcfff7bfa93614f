package teamcity

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/imamik/tcstack/internal/util/naming"
)

const (
	adminPasswordSecretKey = "postgres-password"
	userPasswordSecretKey  = "password"
)

func namespaceObject(name string, labels map[string]string) *corev1.Namespace {
	return &corev1.Namespace{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
	}
}

func dbPropertiesSecret(namespace string, props ConnectionProperties, labels map[string]string) *corev1.Secret {
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.DBPropertiesSecret,
			Namespace: namespace,
			Labels:    labels,
		},
		Type:       corev1.SecretTypeOpaque,
		StringData: map[string]string{naming.DBPropertiesKey: props.Render()},
	}
}

// adminSecret is read by the postgresql chart through auth.existingSecret.
func adminSecret(namespace, password string, labels map[string]string) *corev1.Secret {
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.AdminSecret,
			Namespace: namespace,
			Labels:    labels,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			adminPasswordSecretKey: password,
			userPasswordSecretKey:  password,
		},
	}
}

func proxyConfigMap(namespace, block string, labels map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.ProxyServerConfigMap,
			Namespace: namespace,
			Labels:    labels,
		},
		Data: map[string]string{naming.ProxyServerBlockKey: block},
	}
}
