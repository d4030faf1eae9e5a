package viewtypes

// ============================================================================
// SHARED CSS CLASS CONSTANTS
// Class strings used across the editor templates. The rules live in
// static/dist/main.css.
// ============================================================================

// SectionLabel is the label style for panel headings and control labels.
var SectionLabel = "label"

// GhostButton is an outlined button with no fill.
var GhostButton = "btn btn-ghost"

// PrimaryButton is the filled call-to-action button.
var PrimaryButton = "btn btn-primary"

// PageHeading is the main heading style for top-level pages.
var PageHeading = "page-heading"

// InfoBoxClass is the standard info/detail panel container.
var InfoBoxClass = "panel"

// AlertError styles a dismissible error banner.
var AlertError = "alert alert-error"
