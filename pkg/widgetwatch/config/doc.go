/*
Package config loads widget definitions and tuning values.

# Widget files

A widget file names the widget, its items, and either a list of responsive
breakpoints or a single grid:

	widget_id: recs-home
	items: [sku-1, sku-2, sku-3, sku-4, sku-5]
	breakpoints:
	  - {width: 0, rows_count: 3, columns_count: 2, rows_indents: 16}
	  - {width: 768, rows_count: 2, columns_count: 4, rows_indents: 24}
	tuning:
	  dispatch_interval: 2s
	  resize_interval: 500ms
	  tall_list_ratio: 1.3
	  reobserve_policy: capacity

LoadWidget decodes the file with gopkg.in/yaml.v3 and validates it with
go-playground/validator. Supplying both breakpoints and rows_count, or
neither, is rejected.

# Tuning

The tuning block stays untyped and is read through Config, whose accessors
return a default for missing keys and mismatched types:

	tuning := wf.Tuning()
	window := tuning.Duration(config.KeyDispatchInterval, 2*time.Second)

Durations accept Go duration strings or a bare number of milliseconds.

A separate tuning file, loaded with LoadTuning, overrides a widget's block
key by key:

	over, err := config.LoadTuning("slow-collector.yaml")
	if err != nil {
		return err
	}
	wf.OverrideTuning(over)
*/
package config
