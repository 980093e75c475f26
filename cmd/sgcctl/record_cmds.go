package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/cascade"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/dto"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/form"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/service"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

func (cli *commandLine) create(ctx context.Context, args []string) error {
	return cli.save(ctx, "create", args, 1)
}

func (cli *commandLine) update(ctx context.Context, args []string) error {
	return cli.save(ctx, "update", args, 2)
}

// save runs create (RESOURCE) and update (RESOURCE ID). Field values come
// from -set; on update they overlay the stored item.
func (cli *commandLine) save(ctx context.Context, name string, args []string, want int) error {
	fs := cli.flags(name)
	fields := pairs{}
	fs.Var(fields, "set", "Field as key=value; repeatable. Nested fields use dots, e.g. address.city=Lahore.")
	asJSON := fs.Bool("json", false, "Print the saved item as JSON.")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != want {
		fs.Usage()
		return errHelp
	}
	d, err := lookup(positional[0])
	if err != nil {
		return err
	}
	var id string
	if want == 2 {
		id = positional[1]
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}

	values, err := loadForm(ctx, console, d, id)
	if err != nil {
		return err
	}
	if err := overlay(values, fields); err != nil {
		return err
	}

	var binding *form.Binding[form.Fields]
	if id == "" {
		binding = form.New[form.Fields](d, values, console.FormOptions())
	} else {
		binding = form.Edit[form.Fields](d, id, values, console.FormOptions())
	}
	if result, ok := values.(*form.ResultForm); ok && (id == "" || touchesPlacement(fields)) {
		if err := binding.Validate(); err != nil {
			return err
		}
		if err := checkResult(ctx, console, result); err != nil {
			return err
		}
	}
	out, err := binding.Submit(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return cli.printJSON(out.Data)
	}
	cli.notify(out.Message)
	return nil
}

// loadForm returns an empty form for d, or one pre-filled from item id.
func loadForm(ctx context.Context, console *service.Console, d resource.Descriptor, id string) (form.Fields, error) {
	get := func(out interface{}) error {
		if id == "" {
			return nil
		}
		return console.Records.Get(ctx, d, id, out)
	}

	switch d.Path {
	case resource.Institutions.Path:
		item := models.Institution{Type: models.InstitutionSchool, IsActive: true}
		if err := get(&item); err != nil {
			return nil, err
		}
		return form.InstitutionFormFrom(item), nil
	case resource.Classes.Path:
		item := models.Class{IsActive: true}
		if err := get(&item); err != nil {
			return nil, err
		}
		return form.ClassFormFrom(item), nil
	case resource.Sections.Path:
		item := models.Section{IsActive: true}
		if err := get(&item); err != nil {
			return nil, err
		}
		return &form.SectionForm{
			Name:        item.Name,
			Code:        item.Code,
			Institution: item.Institution.ID(),
			Class:       item.Class.ID(),
			Capacity:    positive(item.Capacity),
			IsActive:    item.IsActive,
		}, nil
	case resource.Groups.Path:
		item := models.Group{IsActive: true}
		if err := get(&item); err != nil {
			return nil, err
		}
		return &form.GroupForm{
			Name:        item.Name,
			Code:        item.Code,
			Type:        item.Type,
			Institution: item.Institution.ID(),
			Description: item.Description,
			IsActive:    item.IsActive,
		}, nil
	case resource.Users.Path:
		item := models.User{IsActive: true}
		if err := get(&item); err != nil {
			return nil, err
		}
		return form.UserFormFrom(item), nil
	case resource.Results.Path:
		if id == "" {
			return &form.ResultForm{}, nil
		}
		var item models.Result
		if err := get(&item); err != nil {
			return nil, err
		}
		return form.ResultFormFrom(item), nil
	case resource.Messages.Path:
		var item models.Message
		if err := get(&item); err != nil {
			return nil, err
		}
		if id != "" && !item.Editable() {
			return nil, appErrors.Local("only draft or scheduled messages can be edited", nil)
		}
		f := &form.MessageForm{
			Subject:      item.Subject,
			Content:      item.Content,
			Type:         string(item.Type),
			AudienceType: item.TargetAudience.Type,
			Criteria:     item.TargetAudience.Criteria,
			Status:       string(item.Status),
			Institution:  item.Institution.ID(),
		}
		if item.ScheduledAt != nil {
			f.ScheduledAt = item.ScheduledAt.Format("2006-01-02T15:04:05Z07:00")
		}
		return f, nil
	case resource.Calendar.Path:
		item := models.CalendarEvent{AllDay: true}
		if err := get(&item); err != nil {
			return nil, err
		}
		f := &form.CalendarEventForm{
			Title:       item.Title,
			Description: item.Description,
			Type:        string(item.Type),
			StartDate:   item.StartDate,
			EndDate:     item.EndDate,
			StartTime:   item.StartTime,
			EndTime:     item.EndTime,
			AllDay:      item.AllDay,
			Location:    item.Location,
			Institution: item.Institution.ID(),
		}
		if item.Recurrence != nil {
			f.RecurrenceFrequency = item.Recurrence.Frequency
			f.RecurrenceInterval = positive(item.Recurrence.Interval)
		}
		return f, nil
	case resource.Reports.Path:
		var item models.Report
		if err := get(&item); err != nil {
			return nil, err
		}
		f := &form.ReportForm{
			Name:        item.Name,
			Description: item.Description,
			Type:        string(item.Type),
			Format:      string(item.Format),
			Institution: item.Institution.ID(),
		}
		if item.Schedule != nil {
			f.ScheduleEnabled = item.Schedule.Enabled
			f.ScheduleFrequency = item.Schedule.Frequency
			f.ScheduleTime = item.Schedule.Time
		}
		return f, nil
	case resource.Settings.Path:
		if id == "" {
			return nil, appErrors.Local("settings are seeded by the backend and cannot be created", nil)
		}
		return settingForm(ctx, console, id)
	}
	return nil, appErrors.Local(fmt.Sprintf("%s cannot be edited from the console", d.Name), nil)
}

func settingForm(ctx context.Context, console *service.Console, key string) (*form.SettingForm, error) {
	grouped, err := console.Records.SettingsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	for _, settings := range grouped {
		for _, s := range settings {
			if s.Key == key || s.ID == key {
				f := form.SettingFormFrom(s, display(s.Value))
				if f.ReadOnly {
					return nil, appErrors.Local("setting "+s.Key+" is read-only", nil)
				}
				return f, nil
			}
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Setting not found")
}

// overlay writes key=value pairs onto values through its JSON field names.
// Booleans and lists follow the type already held by the field.
func overlay(values form.Fields, fields pairs) error {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := setPath(doc, strings.Split(key, "."), fields[key]); err != nil {
			return appErrors.Local(fmt.Sprintf("field %s: %v", key, err), nil)
		}
	}

	raw, err = json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, values)
}

func setPath(doc map[string]interface{}, path []string, value string) error {
	key := path[0]
	if len(path) > 1 {
		child, ok := doc[key].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			doc[key] = child
		}
		return setPath(child, path[1:], value)
	}
	switch doc[key].(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false")
		}
		doc[key] = b
	case []interface{}:
		doc[key] = splitList(value)
	default:
		doc[key] = value
	}
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func (cli *commandLine) toggle(ctx context.Context, args []string) error {
	d, id, console, err := cli.target(ctx, "toggle", args)
	if err != nil {
		return err
	}
	if !d.Supports(resource.ActionToggleStatus) {
		return appErrors.Local(d.Name+" have no status to toggle", nil)
	}
	message, err := console.Records.ToggleStatus(ctx, d, id, nil)
	if err != nil {
		return err
	}
	cli.notify(message)
	return nil
}

func (cli *commandLine) delete(ctx context.Context, args []string) error {
	fs := cli.flags("delete")
	yes := fs.Bool("yes", false, "Do not ask for confirmation.")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		fs.Usage()
		return errHelp
	}
	d, err := lookup(positional[0])
	if err != nil {
		return err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	id := positional[1]
	confirmed := *yes || cli.confirm(fmt.Sprintf("Delete %s %s?", d.Singular, id))
	message, err := console.Records.Delete(ctx, d, id, confirmed)
	if err != nil {
		return err
	}
	cli.notify(message)
	return nil
}

// target parses RESOURCE ID for commands without flags of their own.
func (cli *commandLine) target(ctx context.Context, name string, args []string) (resource.Descriptor, string, *service.Console, error) {
	fs := cli.flags(name)
	positional, err := parse(fs, args)
	if err != nil {
		return resource.Descriptor{}, "", nil, err
	}
	if len(positional) != 2 {
		fs.Usage()
		return resource.Descriptor{}, "", nil, errHelp
	}
	d, err := lookup(positional[0])
	if err != nil {
		return resource.Descriptor{}, "", nil, err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return resource.Descriptor{}, "", nil, err
	}
	return d, positional[1], console, nil
}

// single parses ID for the result, message and report actions.
func (cli *commandLine) single(ctx context.Context, name string, args []string) (string, bool, *service.Console, error) {
	fs := cli.flags(name)
	asJSON := fs.Bool("json", false, "Print JSON.")
	positional, err := parse(fs, args)
	if err != nil {
		return "", false, nil, err
	}
	if len(positional) != 1 {
		fs.Usage()
		return "", false, nil, errHelp
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return "", false, nil, err
	}
	return positional[0], *asJSON, console, nil
}

func (cli *commandLine) publish(ctx context.Context, args []string) error {
	id, asJSON, console, err := cli.single(ctx, "publish", args)
	if err != nil {
		return err
	}
	result, message, err := console.Records.PublishResult(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return cli.printJSON(result)
	}
	cli.notify(message)
	return nil
}

func (cli *commandLine) send(ctx context.Context, args []string) error {
	id, asJSON, console, err := cli.single(ctx, "send", args)
	if err != nil {
		return err
	}
	msg, message, err := console.Records.SendMessage(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return cli.printJSON(msg)
	}
	cli.notify(message)
	if stats := msg.DeliveryStats; stats != nil {
		fmt.Fprintf(cli.out, "delivered %d of %d, %d failed\n", stats.Delivered, stats.Total, stats.Failed)
	}
	return nil
}

func (cli *commandLine) generate(ctx context.Context, args []string) error {
	id, asJSON, console, err := cli.single(ctx, "generate", args)
	if err != nil {
		return err
	}
	out, err := console.Records.GenerateReport(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return cli.printJSON(out)
	}

	keys := make([]string, 0, len(out.Summary))
	for k := range out.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cli.out, "%s: %s\n", k, display(out.Summary[k]))
	}
	if out.GeneratedAt != nil {
		fmt.Fprintf(cli.out, "generated: %s\n", out.GeneratedAt.Local().Format("2006-01-02 15:04"))
	}
	if len(out.Data) == 0 {
		return nil
	}
	fmt.Fprintln(cli.out)
	return cli.printRows(out.Data)
}

// printRows renders report rows with the union of their keys as columns.
func (cli *commandLine) printRows(rows []map[string]interface{}) error {
	seen := map[string]struct{}{}
	var headers []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = display(row[h])
		}
		cells = append(cells, line)
	}
	return cli.table(headers, cells)
}

func (cli *commandLine) promote(ctx context.Context, args []string) error {
	fs := cli.flags("promote")
	f := &form.PromotionForm{}
	fs.StringVar(&f.Operation, "op", string(models.OperationPromote), "promote, transfer or passout.")
	students := fs.String("students", "", "Comma separated student ids.")
	fs.StringVar(&f.FromInstitution, "from-institution", "", "Current institution. Defaults to the session institution.")
	fs.StringVar(&f.FromClass, "from-class", "", "Current class.")
	fs.StringVar(&f.FromSection, "from-section", "", "Current section.")
	fs.StringVar(&f.FromGroup, "from-group", "", "Current group.")
	fs.StringVar(&f.AcademicYear, "year", "", "Current academic year.")
	fs.StringVar(&f.ToInstitution, "to-institution", "", "Destination institution.")
	fs.StringVar(&f.ToClass, "to-class", "", "Destination class.")
	fs.StringVar(&f.ToSection, "to-section", "", "Destination section.")
	fs.StringVar(&f.ToGroup, "to-group", "", "Destination group.")
	fs.StringVar(&f.ToAcademicYear, "to-year", "", "Destination academic year.")
	fs.StringVar(&f.Remarks, "remarks", "", "Remarks stored with every record.")
	asJSON := fs.Bool("json", false, "Print the summary as JSON.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	f.Students = splitList(*students)

	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	if f.Operation != string(models.OperationPassout) && f.ToInstitution == "" {
		f.ToInstitution = f.FromInstitution
		if f.ToInstitution == "" {
			f.ToInstitution = console.Session.CurrentInstitutionID()
		}
	}

	binding := form.New(resource.StudentPromotions, f, console.FormOptions())
	if err := binding.Validate(); err != nil {
		return err
	}
	if err := checkPromotion(ctx, console, f); err != nil {
		return err
	}
	out, err := binding.Submit(ctx)
	if err != nil {
		return err
	}
	var summary dto.PromotionSummary
	if err := json.Unmarshal(out.Data, &summary); err != nil {
		return err
	}
	if *asJSON {
		return cli.printJSON(summary)
	}
	cli.notify(out.Message)
	if len(summary.Records) == 0 {
		return nil
	}
	return showRows(cli, summary.Records, promotionColumns)
}

// checkPromotion runs the source and destination through the dependent
// selectors. Every student must be listed under the source class, and
// section when given.
func checkPromotion(ctx context.Context, console *service.Console, f *form.PromotionForm) error {
	from, err := console.Placement(ctx, cascade.Selection{
		Institution: f.FromInstitution,
		Group:       f.FromGroup,
		Class:       f.FromClass,
		Section:     f.FromSection,
	})
	if err != nil {
		return err
	}
	for _, id := range f.Students {
		if !from.Contains(cascade.LevelStudent, id) {
			return appErrors.Local(fmt.Sprintf("student %s is not in the selected class", id), nil)
		}
	}
	if f.Operation == string(models.OperationPassout) || f.ToClass == "" {
		return nil
	}
	_, err = console.Placement(ctx, cascade.Selection{
		Institution: f.ToInstitution,
		Group:       f.ToGroup,
		Class:       f.ToClass,
		Section:     f.ToSection,
	})
	return err
}

// checkResult places a result's student through the dependent selectors.
func checkResult(ctx context.Context, console *service.Console, f *form.ResultForm) error {
	_, err := console.Placement(ctx, cascade.Selection{
		Institution: f.Institution,
		Group:       f.Group,
		Class:       f.Class,
		Section:     f.Section,
		Student:     f.Student,
	})
	return err
}

// placementFields are the result fields the dependent selectors own.
var placementFields = []string{"institution", "group", "class", "section", "student"}

func touchesPlacement(fields pairs) bool {
	for _, key := range placementFields {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}

func showRows[T any](cli *commandLine, items []T, columns []column[T]) error {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.value(item)
		}
		rows = append(rows, row)
	}
	return cli.table(headers, rows)
}
