package labels

// Standard label keys.
const (
	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyPartOf identifies the stack a resource belongs to
	KeyPartOf = "app.kubernetes.io/part-of"

	// KeyComponent identifies the component (postgresql, teamcity, proxy)
	KeyComponent = "tcstack.io/component"

	// KeyInstance identifies the TeamCity instance a resource serves
	KeyInstance = "tcstack.io/instance"
)

// Component values
const (
	ComponentPostgres = "postgresql"
	ComponentTeamCity = "teamcity"
	ComponentProxy    = "proxy"
)

// ManagedByTCStack is the managed-by value for every object tcstack creates.
const ManagedByTCStack = "tcstack"

// LabelBuilder provides a fluent interface for building object labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the stack name pre-set.
func NewLabelBuilder(stack string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyPartOf:    stack,
			KeyManagedBy: ManagedByTCStack,
		},
	}
}

// WithComponent adds a component label.
func (lb *LabelBuilder) WithComponent(component string) *LabelBuilder {
	lb.labels[KeyComponent] = component
	return lb
}

// WithInstance adds an instance label when instance is non-empty.
func (lb *LabelBuilder) WithInstance(instance string) *LabelBuilder {
	if instance != "" {
		lb.labels[KeyInstance] = instance
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForStack returns a label selector string for all objects in a stack.
func SelectorForStack(stack string) string {
	return KeyPartOf + "=" + stack + "," + KeyManagedBy + "=" + ManagedByTCStack
}
