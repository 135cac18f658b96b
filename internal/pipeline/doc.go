// Package pipeline runs the stage-gated preprocessing session.
//
// A session loads one dataset and walks it through five stages in a fixed
// order:
//
//	selection -> missing -> encoding -> scaling -> outliers
//
// Core Components:
//
// Manager: owns the raw dataset, the working snapshot, the column taxonomy
// and the gate state. Each typed entry point (SelectColumns, HandleMissing,
// HandleCategoricals, HandleScaling, HandleOutliers) gates the call, hands
// the stage a private clone of the snapshot and taxonomy, and commits both
// together when the stage is satisfied.
//
// Stage: one unit of work. Stages never touch the manager's state; they
// return a Report describing what they did.
//
// Registry: holds the stages by ID. DefaultRegistry registers the five
// preprocessing stages.
//
// State: the single enumerated gate position. Only Manager.advance writes it.
//
// Gate rules:
//
//   - a stage whose predecessor has not completed returns a locked error
//   - selection may be redone until missing-value handling has run
//   - missing-value handling may be repeated until encoding has run
//   - encoding, scaling and outliers run once per session
//   - a cancelled stage commits nothing and does not advance
//
// Example usage:
//
//	m := pipeline.NewManager(nil, nil)
//	if err := m.Load(ctx, "titanic.csv", ds); err != nil {
//		return err
//	}
//	if _, err := m.SelectColumns(ctx, "3,5,6", "2"); err != nil {
//		return err
//	}
//	report, err := m.HandleMissing(ctx, dataprep.MissingMedian, "")
package pipeline
