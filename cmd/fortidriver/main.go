// Command fortidriver queries FortiGate firewalls over SSH
//
// Usage:
//
//	fortidriver facts -H <host> -u <user>          Device facts
//	fortidriver arp -H <host> -u <user>            ARP table
//	fortidriver bgp -H <host> -u <user>            BGP configuration
//	fortidriver config -H <host> -u <user>         Running/startup configuration
//	fortidriver interfaces-ip -H <host> -u <user>  Interface addresses
//	fortidriver cli -H <host> -u <user> <cmd>...   Raw commands
//	fortidriver get <getter> -H <host> -u <user>   Any getter by name
//	fortidriver backup -H <host> -u <user>         Store the configuration
//	fortidriver simulate                           Run a FortiGate SSH simulator
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
