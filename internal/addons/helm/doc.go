// Package helm provides Helm chart values handling and chart installation.
//
// It includes the [Values] tree with its deep-merge engine, a chart registry
// mapping addon names to chart specifications, a renderer built on the Helm
// template engine, and two [Installer] implementations: [Client], which
// installs or upgrades a release in a live cluster through the Helm SDK, and
// [TemplateInstaller], which only renders manifests.
//
// Downloaded charts are cached locally under the user cache directory.
package helm
