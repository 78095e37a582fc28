// Package consistency verifies reduced models against their detailed
// mechanism using the test targets shipped in each model directory.
//
// For every target it checks naming, decode and encode against stored
// values, chemistry sources against stored values, and that every
// thermodynamic property agrees between the reduced backend and the
// detailed backend fed the decoded composition. Disagreements are
// collected as [Finding] values in a [Report] rather than stopping at the
// first one.
package consistency
