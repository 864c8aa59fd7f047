// Package selection coordinates the single contact selection between the
// list and the detail view.
//
// In two-pane layouts a tap selects the record and the Presenter shows it;
// in single-pane layouts a tap goes to the Navigator and nothing is kept.
// Capabilities are injected through Config and New fails with a
// *ConfigError when one is missing.
package selection
