// Package addons deploys chart based cluster addons.
//
// A deployment run is described by a [ClusterInfo], which acts as the
// dependency registry (which addons are scheduled) and the resource registry
// (certificates and other resources provided before deployment). [Deploy]
// schedules all addons of the run, provides resources, and then deploys the
// addons in dependency order through a [helm.Installer].
//
// Addons raise [PreconditionError] for invalid option combinations and
// [MissingDependencyError] when an enabled feature needs a collaborator that
// is not scheduled. Both are returned before anything is installed.
package addons
