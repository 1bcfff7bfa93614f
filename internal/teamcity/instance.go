package teamcity

import (
	"context"
	"strconv"
	"strings"

	"github.com/imamik/tcstack/internal/config"
	"github.com/imamik/tcstack/internal/helm"
	"github.com/imamik/tcstack/internal/provisioning"
	"github.com/imamik/tcstack/internal/util/labels"
	"github.com/imamik/tcstack/internal/util/naming"
)

// InstanceIDs are the node IDs of one TeamCity composite.
type InstanceIDs struct {
	RolePassword string
	Role         string
	Database     string
	Grant        string
	Namespace    string
	Secret       string
	Release      string
}

// IDsFor returns the node IDs of instance name.
func IDsFor(name string) InstanceIDs {
	ns := naming.Namespace(name)
	return InstanceIDs{
		RolePassword: naming.NodeID(string(provisioning.KindPassword), naming.RolePassword(name)),
		Role:         naming.NodeID(string(provisioning.KindRole), naming.Role(name)),
		Database:     naming.NodeID(string(provisioning.KindDatabase), naming.Database(name)),
		Grant:        naming.NodeID(string(provisioning.KindGrant), name),
		Namespace:    naming.NodeID(string(provisioning.KindNamespace), ns),
		Secret:       naming.NodeID(string(provisioning.KindSecret), ns, naming.DBPropertiesSecret),
		Release:      naming.NodeID(string(provisioning.KindRelease), ns, naming.Release(name)),
	}
}

func (f *Fleet) serverRelease(inst config.InstanceConfig) helm.ReleaseSpec {
	return helm.ReleaseSpec{
		Namespace: naming.Namespace(inst.Name),
		Name:      naming.Release(inst.Name),
		Chart:     chartRef(f.cfg.TeamCity.Chart),
		Values:    ServerValues(f.cfg.TeamCity, inst),
		Timeout:   f.deps.Timeouts.Release,
	}
}

// instanceSteps builds one TeamCity composite. Phase one provisions the
// role, database and grant; phase two the namespace, the database.properties
// secret and the server release, which consumes the grant and so runs only
// after the whole first phase.
func (f *Fleet) instanceSteps(inst config.InstanceConfig) []step {
	ids := IDsFor(inst.Name)
	roleName := naming.Role(inst.Name)
	dbName := naming.Database(inst.Name)
	ns := naming.Namespace(inst.Name)
	lbls := f.labels(labels.ComponentTeamCity, inst.Name)

	pw := f.storedPasswordStep(naming.RolePassword(inst.Name), f.cfg.TeamCity.RolePassword)

	role := step{
		node: provisioning.Node{
			ID:          ids.Role,
			Kind:        provisioning.KindRole,
			Description: "ensure role " + roleName,
			DependsOn:   []string{EndpointID, AdminPasswordID, ids.RolePassword},
			Run: func(ctx context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
				rolePassword, err := in.Secret(ids.RolePassword, SecretValue)
				if err != nil {
					return provisioning.Handle{}, err
				}
				var h provisioning.Handle
				err = f.withAdmin(ctx, in, func(admin DatabaseAdmin) error {
					r, err := admin.EnsureRole(ctx, roleName, rolePassword)
					if err != nil {
						return err
					}
					h = oidHandle(r.Name, r.OID, r.Created)
					return nil
				})
				return h, err
			},
		},
		teardown: func(purge bool) provisioning.RunFunc {
			if !purge {
				return nil
			}
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				err := f.withStoredAdmin(ctx, func(admin DatabaseAdmin) error {
					return admin.DropRole(ctx, roleName)
				})
				return provisioning.Handle{ID: roleName}, err
			}
		},
	}

	database := step{
		node: provisioning.Node{
			ID:          ids.Database,
			Kind:        provisioning.KindDatabase,
			Description: "ensure database " + dbName,
			DependsOn:   []string{EndpointID, AdminPasswordID, ids.Role},
			Run: func(ctx context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
				var h provisioning.Handle
				err := f.withAdmin(ctx, in, func(admin DatabaseAdmin) error {
					d, err := admin.EnsureDatabase(ctx, dbName)
					if err != nil {
						return err
					}
					h = oidHandle(d.Name, d.OID, d.Created)
					return nil
				})
				return h, err
			},
		},
		teardown: func(purge bool) provisioning.RunFunc {
			if !purge {
				return nil
			}
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				err := f.withStoredAdmin(ctx, func(admin DatabaseAdmin) error {
					return admin.DropDatabase(ctx, dbName)
				})
				return provisioning.Handle{ID: dbName}, err
			}
		},
	}

	grant := step{
		node: provisioning.Node{
			ID:          ids.Grant,
			Kind:        provisioning.KindGrant,
			Description: "grant all privileges on " + dbName + " to " + roleName,
			DependsOn:   []string{EndpointID, AdminPasswordID, ids.Role, ids.Database},
			Run: func(ctx context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
				var h provisioning.Handle
				err := f.withAdmin(ctx, in, func(admin DatabaseAdmin) error {
					g, err := admin.EnsureGrant(ctx, roleName, dbName)
					if err != nil {
						return err
					}
					h = provisioning.Handle{
						ID: g.Role + "@" + g.Database,
						Outputs: map[string]string{
							OutRole:     g.Role,
							OutDatabase: g.Database,
							OutPrivs:    strings.Join(g.Privileges, ","),
							OutCreated:  strconv.FormatBool(g.Created),
						},
					}
					return nil
				})
				return h, err
			},
		},
	}

	namespace := f.namespaceStep(ns, lbls, true)

	secret := step{
		node: provisioning.Node{
			ID:          ids.Secret,
			Kind:        provisioning.KindSecret,
			Description: "apply " + naming.DBPropertiesKey + " for " + inst.Name,
			DependsOn:   []string{ids.Namespace, EndpointID, ids.RolePassword, ids.Grant},
			Run: func(ctx context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
				props, err := propertiesFromInputs(in, inst.Name, ids)
				if err != nil {
					return provisioning.Handle{}, err
				}
				ref, err := f.deps.Kube.ApplySecret(ctx, dbPropertiesSecret(ns, props, lbls))
				if err != nil {
					return provisioning.Handle{}, err
				}
				return provisioning.Handle{
					ID:      ref.ID(),
					Outputs: map[string]string{OutName: naming.DBPropertiesSecret, OutNamespace: ns},
				}, nil
			},
		},
		teardown: func(bool) provisioning.RunFunc {
			return func(ctx context.Context, _ provisioning.Inputs) (provisioning.Handle, error) {
				return provisioning.Handle{ID: ids.Secret}, f.deps.Kube.DeleteSecret(ctx, ns, naming.DBPropertiesSecret)
			}
		},
	}

	rel := f.releaseStep(f.serverRelease(inst),
		[]string{ids.Namespace, ids.Secret, ids.Grant},
		map[string]string{OutPort: strconv.Itoa(inst.ServicePort)})

	return []step{pw, role, database, grant, namespace, secret, rel}
}

func propertiesFromInputs(in provisioning.Inputs, instance string, ids InstanceIDs) (ConnectionProperties, error) {
	host, err := in.Output(EndpointID, OutHost)
	if err != nil {
		return ConnectionProperties{}, err
	}
	portStr, err := in.Output(EndpointID, OutPort)
	if err != nil {
		return ConnectionProperties{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ConnectionProperties{}, err
	}
	pw, err := in.Secret(ids.RolePassword, SecretValue)
	if err != nil {
		return ConnectionProperties{}, err
	}

	props := ConnectionProperties{
		Host:     host,
		Port:     port,
		Database: naming.Database(instance),
		User:     naming.Role(instance),
		Password: pw,
	}
	return props, props.Validate()
}

func oidHandle(name string, oid uint32, created bool) provisioning.Handle {
	id := strconv.FormatUint(uint64(oid), 10)
	return provisioning.Handle{
		ID: id,
		Outputs: map[string]string{
			OutName:    name,
			OutOID:     id,
			OutCreated: strconv.FormatBool(created),
		},
	}
}
