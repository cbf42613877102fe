package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// LoadFromEnv overrides fields of cfg from the environment variables named by
// their `env` struct tags. Nested structs are walked; unset variables leave
// fields untouched.
func LoadFromEnv(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("LoadFromEnv needs a non-nil pointer, got %T", cfg)
	}
	return loadFromEnv(v.Elem())
}

func loadFromEnv(v reflect.Value) error {
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := loadFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envVar := t.Field(i).Tag.Get("env")
		if envVar == "" {
			continue
		}
		value, ok := os.LookupEnv(envVar)
		if !ok || value == "" {
			continue
		}

		if err := setFieldValue(field, value, envVar); err != nil {
			return err
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value, envVar string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %w", envVar, err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %w", envVar, err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type %s for %s", field.Kind(), envVar)
	}
	return nil
}
