/*
Package dnsquery builds the wire format of a single DNS question query as described in RFC 1035 section 4.1.
The encoded message always carries one question of type A and class IN, no resource records and no compression.
Encoding is a pure function of the transaction ID and the hostname, so a single Query can be shared freely
between goroutines.
*/
package dnsquery
