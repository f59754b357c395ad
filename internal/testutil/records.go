package testutil

import "github.com/roach88/gandalf/internal/ir"

// Host builds a record from alternating name/value pairs.
//
//	testutil.Host("hostname", "a", "vlan", 10)
//
// Values go through ir.MustFromGo, so nil becomes Null. Panics on an odd
// argument count or an unsupported value type.
func Host(kv ...any) ir.Record {
	if len(kv)%2 != 0 {
		panic("testutil.Host: odd number of arguments")
	}
	fields := make([]ir.Field, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic("testutil.Host: field name must be a string")
		}
		fields = append(fields, ir.F(name, ir.MustFromGo(kv[i+1])))
	}
	return ir.NewRecord(fields...)
}

// Inventory is a small host inventory shared by rendering tests.
func Inventory() []ir.Record {
	return []ir.Record{
		Host("hostname", "ns1", "ip", "10.0.10.2", "mac", "aa:bb:cc:00:00:01", "vlan", 10, "role", "dns"),
		Host("hostname", "web1", "ip", "10.0.10.11", "mac", "aa:bb:cc:00:00:02", "vlan", 10, "role", "web"),
		Host("hostname", "db1", "ip", "10.0.20.21", "mac", "aa:bb:cc:00:00:03", "vlan", 20, "role", "db"),
		Host("hostname", "printer", "ip", "10.0.30.5", "vlan", 30, "role", "other"),
	}
}
